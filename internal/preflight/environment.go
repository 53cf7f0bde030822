// Package preflight holds the advisory checks run before any credential is
// requested: configuration presence and host reachability.
package preflight

import (
	"strings"

	"go.uber.org/zap"

	"github.com/rflorenc/devops-auth-check/internal/config"
)

// MinTokenLength is the shortest personal access token accepted without a warning.
const MinTokenLength = 30

// TokenWarnings returns shape problems with a static token. An empty token
// has none; absence is reported separately.
func TokenWarnings(token string) []string {
	if token == "" {
		return nil
	}
	var warnings []string
	if len(token) < MinTokenLength {
		warnings = append(warnings, "token is shorter than expected; it may be truncated")
	}
	if strings.Contains(token, " ") {
		warnings = append(warnings, "token contains a space")
	}
	if strings.Contains(token, ":") {
		warnings = append(warnings, "token contains a colon; the colon is reserved by the Basic encoding and suggests malformed input")
	}
	return warnings
}

// InspectEnvironment logs the presence of every snapshot key and returns true
// if all of them are set.
func InspectEnvironment(snap config.Snapshot, logger *zap.Logger) bool {
	logger.Info("Checking environment")
	allSet := true
	for _, key := range config.SnapshotKeys {
		if !snap.IsSet(key) {
			allSet = false
			logger.Warn("Not set", zap.String("key", key))
			continue
		}
		if key == config.KeyToken {
			logger.Info("Set", zap.String("key", key), zap.Int("length", len(snap.Get(key))))
		} else {
			logger.Info("Set", zap.String("key", key), zap.String("value", snap.Get(key)))
		}
	}

	for _, w := range TokenWarnings(snap.Token()) {
		logger.Warn("Token format warning", zap.String("key", config.KeyToken), zap.String("warning", w))
	}
	return allSet
}
