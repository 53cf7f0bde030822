package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rflorenc/devops-auth-check/internal/logging"
)

// commandRunner runs an external command and returns its stdout.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// AzureCLI is a Provider backed by the Azure CLI ("az").
type AzureCLI struct {
	Binary  string
	Timeout time.Duration
	run     commandRunner
}

// NewAzureCLI creates a provider invoking binary, each call bounded by timeout.
func NewAzureCLI(binary string, timeout time.Duration) *AzureCLI {
	return &AzureCLI{Binary: binary, Timeout: timeout, run: runCommand}
}

type azAccount struct {
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
	User     struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"user"`
}

type azAccessToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresOn   string `json:"expiresOn"`
	TokenType   string `json:"tokenType"`
}

func (a *AzureCLI) Name() string { return "Azure CLI" }

func (a *AzureCLI) LoginHint() string {
	return fmt.Sprintf("run '%s login' and try again", a.Binary)
}

func (a *AzureCLI) IsAvailable(ctx context.Context) error {
	if _, err := a.exec(ctx, "--version"); err != nil {
		return fmt.Errorf("%w: %s --version: %v", ErrToolNotInstalled, a.Binary, err)
	}
	return nil
}

func (a *AzureCLI) IsAuthenticated(ctx context.Context) (*Session, error) {
	out, err := a.exec(ctx, "account", "show", "--output", "json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s account show: %v", ErrNotLoggedIn, a.Binary, err)
	}
	var acct azAccount
	if err := json.Unmarshal(out, &acct); err != nil {
		return nil, fmt.Errorf("%w: parsing account show output: %v", ErrNotLoggedIn, err)
	}
	return &Session{User: acct.User.Name, Tenant: acct.TenantID}, nil
}

func (a *AzureCLI) AcquireToken(ctx context.Context, resource string) (string, error) {
	out, err := a.exec(ctx, "account", "get-access-token", "--resource", resource, "--output", "json")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenAcquisition, err)
	}
	var tok azAccessToken
	if err := json.Unmarshal(out, &tok); err != nil {
		return "", fmt.Errorf("%w: parsing token output: %v", ErrTokenAcquisition, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty accessToken in output", ErrTokenAcquisition)
	}
	return tok.AccessToken, nil
}

func (a *AzureCLI) exec(ctx context.Context, args ...string) ([]byte, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	return a.run(ctx, a.Binary, args...)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, logging.Truncate(msg, 200))
		}
		return out, err
	}
	return out, nil
}
