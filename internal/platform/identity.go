package platform

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/rflorenc/devops-auth-check/internal/logging"
)

// maxLoggedBody bounds response bodies written to the log.
const maxLoggedBody = 1000

// ResolveIdentity calls the profile endpoint and returns the caller's public
// alias. Every status is accepted as a response; any failure is logged and
// yields "".
func ResolveIdentity(ctx context.Context, c *Client, ep Endpoints, logger *zap.Logger) string {
	logger.Info("Resolving identity",
		zap.String("url", ep.IdentityURL),
		zap.String("requestId", c.RequestID()))

	resp, err := c.Do(ctx, ep.IdentityURL, url.Values{"api-version": {ep.APIVersion}})
	if err != nil {
		if errors.Is(err, ErrNoResponse) {
			logger.Error("No response from identity endpoint", zap.Error(err))
		} else {
			logger.Error("Identity request could not be sent", zap.Error(err))
		}
		return ""
	}

	if resp.StatusCode != http.StatusOK {
		fields := []zap.Field{
			zap.Int("status", resp.StatusCode),
			zap.Any("headers", redactHeaders(resp.Header)),
			zap.String("body", logging.Truncate(string(resp.Body), maxLoggedBody)),
		}
		if hint := statusHint(resp.StatusCode); hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		logger.Error("Identity request failed", fields...)
		return ""
	}

	profile, err := ParseProfile(resp.Body)
	if err != nil {
		logger.Error("Unexpected identity response",
			zap.Error(&APIError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}),
			zap.String("body", logging.Truncate(string(resp.Body), maxLoggedBody)))
		return ""
	}

	logger.Info("Identity resolved",
		zap.Int("status", resp.StatusCode),
		zap.String("displayName", profile.DisplayName),
		zap.String("publicAlias", profile.PublicAlias))
	return profile.PublicAlias
}

func statusHint(code int) string {
	switch code {
	case http.StatusNonAuthoritativeInfo, http.StatusFound, http.StatusUnauthorized:
		return "credential was rejected; check that the token is valid and not expired"
	case http.StatusForbidden:
		return "credential lacks the required scope (e.g. vso.profile)"
	}
	return ""
}
