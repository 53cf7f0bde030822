package credential

import "context"

// Session describes the signed-in identity of an external tool.
type Session struct {
	User   string
	Tenant string
}

// Provider obtains delegated tokens from an external, already authenticated tool.
type Provider interface {
	// Name is shown to the operator in diagnostics.
	Name() string

	// IsAvailable returns nil if the tool is installed.
	IsAvailable(ctx context.Context) error

	// LoginHint tells the operator how to sign in outside this tool.
	LoginHint() string

	// IsAuthenticated returns the active session, or an error if there is none.
	IsAuthenticated(ctx context.Context) (*Session, error)

	// AcquireToken requests an access token scoped to resource.
	AcquireToken(ctx context.Context, resource string) (string, error)
}
