// Package platform talks to the account and profile service: it resolves the
// caller's identity and lists the accounts that identity belongs to.
package platform

// Endpoints locates the two service calls made by a run.
type Endpoints struct {
	IdentityURL string
	AccountsURL string
	APIVersion  string
}
