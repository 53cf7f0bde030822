package credential

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rflorenc/devops-auth-check/internal/console"
)

// Menu choices.
const (
	ChoiceStatic    = "1"
	ChoiceDelegated = "2"
)

// Acquirer asks the operator for an authentication method and turns the
// resulting secret into an Authorization header value.
type Acquirer struct {
	Console  *console.Console
	Provider Provider
	Logger   *zap.Logger

	// Resource is the id delegated tokens are scoped to.
	Resource string

	// DefaultToken is offered when the operator enters no token.
	DefaultToken string

	// DefaultMethod preselects a menu entry ("pat" or "azure-cli").
	DefaultMethod string
}

// Acquire runs the interactive flow and returns the header value.
func (a *Acquirer) Acquire(ctx context.Context) (string, error) {
	def := choiceForMethod(a.DefaultMethod)

	a.Console.Println()
	a.Console.Println("Choose an authentication method:")
	a.Console.Printf("  %s) Personal access token (PAT)\n", ChoiceStatic)
	a.Console.Printf("  %s) %s (delegated token)\n", ChoiceDelegated, a.providerName())
	label := "Choice: "
	if def != "" {
		label = fmt.Sprintf("Choice [%s]: ", def)
	}
	choice, err := a.Console.Prompt(ctx, label)
	if err != nil {
		return "", err
	}
	if choice == "" {
		choice = def
	}

	switch choice {
	case ChoiceStatic:
		return a.acquireStatic(ctx)
	case ChoiceDelegated:
		return a.acquireDelegated(ctx)
	default:
		a.Logger.Error("Invalid choice", zap.String("choice", choice))
		return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrInvalidChoice, choice, ChoiceStatic, ChoiceDelegated)
	}
}

func (a *Acquirer) acquireStatic(ctx context.Context) (string, error) {
	label := "Personal access token: "
	if a.DefaultToken != "" {
		label = "Personal access token (Enter to use the configured token): "
	}
	token, err := a.Console.PromptSecret(ctx, label)
	if err != nil {
		return "", err
	}

	source := "prompt"
	if token == "" && a.DefaultToken != "" {
		token = a.DefaultToken
		source = "configuration"
	}
	if token == "" {
		a.Logger.Error("No personal access token provided")
		return "", fmt.Errorf("%w: no personal access token entered or configured", ErrMissingCredential)
	}

	a.Logger.Info("Using personal access token",
		zap.String("source", source),
		zap.Int("length", len(token)),
		zap.String("scheme", SchemeBasic))
	return BasicAuthHeader(token), nil
}

func (a *Acquirer) acquireDelegated(ctx context.Context) (string, error) {
	if a.Provider == nil {
		return "", fmt.Errorf("%w: no delegated provider configured", ErrToolNotInstalled)
	}
	name := a.Provider.Name()

	a.Logger.Info("Checking credential tool", zap.String("tool", name))
	if err := a.Provider.IsAvailable(ctx); err != nil {
		a.Logger.Error("Credential tool is not installed", zap.String("tool", name), zap.Error(err))
		return "", err
	}

	session, err := a.Provider.IsAuthenticated(ctx)
	if err != nil {
		a.Logger.Error("Not logged in",
			zap.String("tool", name),
			zap.String("hint", a.Provider.LoginHint()),
			zap.Error(err))
		return "", err
	}
	a.Logger.Info("Active session found",
		zap.String("user", session.User),
		zap.String("tenant", session.Tenant))

	token, err := a.Provider.AcquireToken(ctx, a.Resource)
	if err != nil {
		a.Logger.Error("Failed to acquire access token", zap.String("resource", a.Resource), zap.Error(err))
		return "", err
	}

	a.Logger.Info("Acquired access token",
		zap.String("resource", a.Resource),
		zap.Int("length", len(token)),
		zap.String("scheme", SchemeBearer))
	return BearerAuthHeader(token), nil
}

func (a *Acquirer) providerName() string {
	if a.Provider == nil {
		return "Azure CLI"
	}
	return a.Provider.Name()
}

// choiceForMethod maps a configured auth method to its menu entry.
func choiceForMethod(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "pat", "token", "basic":
		return ChoiceStatic
	case "azure-cli", "azcli", "az", "cli", "bearer":
		return ChoiceDelegated
	}
	return ""
}
