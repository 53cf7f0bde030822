package models

// Account is one organization the caller is a member of.
type Account struct {
	AccountID   string `json:"accountId"`
	AccountURI  string `json:"accountUri"`
	AccountName string `json:"accountName"`
}

// AccountNames returns the display names in response order.
func AccountNames(accounts []Account) []string {
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.AccountName)
	}
	return names
}
