package security

import (
	"fmt"
	"time"

	"github.com/shaj13/go-guardian/v2/auth"
	"github.com/shaj13/go-guardian/v2/auth/strategies/token"
	"github.com/shaj13/go-guardian/v2/auth/strategies/union"
	log "github.com/sirupsen/logrus"
)

// ApiKeyHeader is an alternative to "Authorization: Bearer <key>".
const ApiKeyHeader = "X-Autonet-Api-Key"

var apiKeyStrategy union.Union
var sessionStrategy auth.Strategy
var sessionTokens SessionTokens

// SetupGoGuardian prepares the session cookie handling and, when apiKeys is not empty, api key authentication.
func SetupGoGuardian(apiKeys []string, sessionSecret []byte, sessionTTL time.Duration) error {
	tokens, err := NewSessionTokens(sessionSecret, sessionTTL)
	if err != nil {
		return err
	}
	sessionTokens = tokens
	sessionStrategy = NewSessionCookieStrategy(tokens)

	apiKeyStrategy = nil
	if len(apiKeys) == 0 {
		log.Info("API keys are not configured, API is open")
		return nil
	}
	keys := make(map[string]auth.Info, len(apiKeys))
	for i, key := range apiKeys {
		if key == "" {
			return fmt.Errorf("api key #%d is empty", i)
		}
		id := fmt.Sprintf("api-key-%d", i)
		keys[key] = auth.NewDefaultUser(id, id, []string{}, auth.Extensions{})
	}
	headerStrategy := token.NewStatic(keys, token.SetParser(token.XHeaderParser(ApiKeyHeader)))
	bearerStrategy := token.NewStatic(keys)
	apiKeyStrategy = union.New(headerStrategy, bearerStrategy)
	log.Infof("API key authentication is enabled, %d key(s) configured", len(keys))
	return nil
}
