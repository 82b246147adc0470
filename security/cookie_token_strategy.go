package security

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shaj13/go-guardian/v2/auth"
)

// sessionExpiryExtension holds the RFC 3339 expiry of the session cookie that authenticated the request.
const sessionExpiryExtension = "session-expiry"

func NewSessionCookieStrategy(tokens SessionTokens) auth.Strategy {
	return &sessionCookieStrategyImpl{tokens: tokens}
}

type sessionCookieStrategyImpl struct {
	tokens SessionTokens
}

// Authenticate resolves the session cookie to an anonymous user whose id is the session id.
func (a sessionCookieStrategyImpl) Authenticate(ctx context.Context, r *http.Request) (auth.Info, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("session cookie not found")
	}
	claims, err := a.tokens.Parse(cookie.Value)
	if err != nil {
		return nil, err
	}
	exts := auth.Extensions{sessionExpiryExtension: []string{claims.Expiry.UTC().Format(time.RFC3339)}}
	return auth.NewDefaultUser(claims.SessionId, claims.SessionId, []string{}, exts), nil
}
