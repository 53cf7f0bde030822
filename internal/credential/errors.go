package credential

import "errors"

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidChoice     = errors.New("invalid choice")
	ErrToolNotInstalled  = errors.New("credential tool not installed")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrTokenAcquisition  = errors.New("token acquisition failed")
)
