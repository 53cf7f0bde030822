package models

// Profile is the caller's identity as returned by the profile endpoint.
type Profile struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	PublicAlias  string `json:"publicAlias"`
	EmailAddress string `json:"emailAddress"`
}
