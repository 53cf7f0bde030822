package platform

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/rflorenc/devops-auth-check/internal/logging"
	"github.com/rflorenc/devops-auth-check/internal/models"
)

// ListAccounts lists the organizations alias is a member of. With an empty
// alias it makes no request. Errors are logged, never returned; ok is false
// when no list was obtained.
func ListAccounts(ctx context.Context, c *Client, ep Endpoints, alias string, logger *zap.Logger) (accounts []models.Account, ok bool) {
	if alias == "" {
		logger.Warn("Cannot test account listing: no public alias from the identity call")
		return nil, false
	}

	logger.Info("Listing accounts",
		zap.String("url", ep.AccountsURL),
		zap.String("memberId", alias),
		zap.String("requestId", c.RequestID()))

	accounts, err := fetchAccounts(ctx, c, ep, alias)
	if err != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			logger.Error("Accounts request failed",
				zap.Int("status", apiErr.StatusCode),
				zap.String("body", logging.Truncate(apiErr.Body, maxLoggedBody)),
				zap.Error(err))
		case errors.Is(err, ErrNoResponse):
			logger.Error("No response from accounts endpoint", zap.Error(err))
		default:
			logger.Error("Accounts request failed", zap.Error(err))
		}
		return nil, false
	}

	logger.Info("Accounts retrieved", zap.Int("count", len(accounts)))
	if len(accounts) == 0 {
		logger.Warn("No organizations found")
		return accounts, true
	}
	logger.Info("Organizations", zap.String("names", strings.Join(models.AccountNames(accounts), ", ")))
	return accounts, true
}

func fetchAccounts(ctx context.Context, c *Client, ep Endpoints, alias string) ([]models.Account, error) {
	params := url.Values{
		"memberId":    {alias},
		"api-version": {ep.APIVersion},
	}
	resp, err := c.Get(ctx, ep.AccountsURL, params)
	if err != nil {
		return nil, err
	}
	accounts, err := ParseAccounts(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}
	return accounts, nil
}
