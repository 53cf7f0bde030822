package platform

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rflorenc/devops-auth-check/internal/models"
)

// accountsEnvelope is the list envelope used by the accounts endpoint.
type accountsEnvelope struct {
	Count int               `json:"count"`
	Value *[]models.Account `json:"value"`
}

// ParseProfile decodes a profile response body.
func ParseProfile(body []byte) (*models.Profile, error) {
	var p models.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("parsing profile response: %w", err)
	}
	if p.PublicAlias == "" {
		return nil, fmt.Errorf("profile response missing publicAlias field")
	}
	return &p, nil
}

// ParseAccounts decodes an accounts response body. An empty list is valid;
// a missing "value" field is not.
func ParseAccounts(body []byte) ([]models.Account, error) {
	var env accountsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parsing accounts response: %w", err)
	}
	if env.Value == nil {
		return nil, fmt.Errorf("accounts response missing value field")
	}
	return *env.Value, nil
}

// OrganizationFromURL extracts the organization name from an organization URL.
// Both https://dev.azure.com/{org} and https://{org}.visualstudio.com are
// recognized. Returns "" if the URL has neither shape.
func OrganizationFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "dev.azure.com" {
		seg, _, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
		return seg
	}
	if org, ok := strings.CutSuffix(host, ".visualstudio.com"); ok && org != "" && !strings.Contains(org, ".") {
		return org
	}
	return ""
}

// HasOrganization reports whether name is one of the accounts, ignoring case.
func HasOrganization(accounts []models.Account, name string) bool {
	for _, a := range accounts {
		if strings.EqualFold(a.AccountName, name) {
			return true
		}
	}
	return false
}
