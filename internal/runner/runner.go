// Package runner drives a single diagnostic run from environment checks to
// account listing.
package runner

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rflorenc/devops-auth-check/internal/config"
	"github.com/rflorenc/devops-auth-check/internal/console"
	"github.com/rflorenc/devops-auth-check/internal/credential"
	"github.com/rflorenc/devops-auth-check/internal/models"
	"github.com/rflorenc/devops-auth-check/internal/platform"
	"github.com/rflorenc/devops-auth-check/internal/preflight"
)

// ErrStopped is returned when the operator's menu input ends the run early.
// It is reported in the log and is not a failure.
var ErrStopped = errors.New("run stopped by operator choice")

// Runner holds everything a run needs. Steps execute strictly in order.
type Runner struct {
	Config   *config.Config
	Snapshot config.Snapshot
	Console  *console.Console
	Pinger   preflight.Pinger
	Provider credential.Provider
	Logger   *zap.Logger
}

// Run executes the diagnostic. Only credential acquisition errors and
// cancellation are returned; everything after that is reported through the
// logger. An invalid menu choice returns ErrStopped.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.Config

	if preflight.InspectEnvironment(r.Snapshot, r.Logger) {
		r.Logger.Info("All configuration keys are set")
	} else {
		r.Logger.Warn("Some configuration keys are not set")
	}

	prober := &preflight.Prober{Pinger: r.Pinger, Timeout: cfg.ProbeTimeout, Logger: r.Logger}
	prober.Probe(ctx, cfg.ProbeHosts)

	acquirer := &credential.Acquirer{
		Console:       r.Console,
		Provider:      r.Provider,
		Logger:        r.Logger,
		Resource:      cfg.Resource,
		DefaultToken:  r.Snapshot.Token(),
		DefaultMethod: r.Snapshot.AuthMethod(),
	}
	header, err := acquirer.Acquire(ctx)
	switch {
	case errors.Is(err, credential.ErrInvalidChoice):
		return ErrStopped
	case err != nil:
		return err
	}

	client := platform.NewClient(header, cfg.Timeout)
	ep := platform.Endpoints{
		IdentityURL: cfg.IdentityURL,
		AccountsURL: cfg.AccountsURL,
		APIVersion:  cfg.APIVersion,
	}

	alias := platform.ResolveIdentity(ctx, client, ep, r.Logger)
	if err := ctx.Err(); err != nil {
		return err
	}
	accounts, ok := platform.ListAccounts(ctx, client, ep, alias, r.Logger)
	if err := ctx.Err(); err != nil {
		return err
	}
	if ok {
		r.reportOrganization(accounts)
	}

	r.Logger.Info("Diagnostics complete", zap.String("requestId", client.RequestID()))
	return nil
}

// reportOrganization checks the configured organization against the accounts found.
func (r *Runner) reportOrganization(accounts []models.Account) {
	orgURL := r.Snapshot.OrgURL()
	if orgURL == "" {
		return
	}
	org := platform.OrganizationFromURL(orgURL)
	if org == "" {
		r.Logger.Warn("Could not read an organization name from the configured URL",
			zap.String("key", config.KeyOrgURL), zap.String("value", orgURL))
		return
	}
	if platform.HasOrganization(accounts, org) {
		r.Logger.Info("Configured organization is accessible", zap.String("organization", org))
		return
	}
	r.Logger.Warn("Configured organization not in account list", zap.String("organization", org))
}
