package security

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Netcracker/qubership-autonet-service/controller"
	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/secctx"
	"github.com/shaj13/go-guardian/v2/auth"
	log "github.com/sirupsen/logrus"
)

// Secure checks the api key when one is required and binds the request to a browser session.
// A request without a valid session cookie gets a new session.
func Secure(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverPanic(w)

		if apiKeyStrategy != nil {
			_, user, err := apiKeyStrategy.AuthenticateRequest(r)
			if err != nil {
				log.Debugf("Authorization failed(401): %+v", err)
				controller.RespondWithCustomError(w, &exception.CustomError{
					Status:  http.StatusUnauthorized,
					Code:    exception.Unauthorized,
					Message: exception.UnauthorizedMsg,
					Debug:   fmt.Sprintf("%v", err),
				})
				return
			}
			r = auth.RequestWithUser(user, r)
		}

		sessionId, err := resolveSession(w, r)
		if err != nil {
			controller.RespondWithCustomError(w, &exception.CustomError{
				Status:  http.StatusInternalServerError,
				Message: "Failed to start session",
				Debug:   err.Error(),
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(secctx.MakeSessionContext(r, sessionId)))
	}
}

func NoSecure(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverPanic(w)
		next.ServeHTTP(w, r)
	}
}

func resolveSession(w http.ResponseWriter, r *http.Request) (string, error) {
	user, err := sessionStrategy.Authenticate(r.Context(), r)
	if err == nil {
		sessionId := user.GetID()
		renewSession(w, sessionId, user.GetExtensions()[sessionExpiryExtension])
		return sessionId, nil
	}
	log.Tracef("Session cookie is not accepted: %v", err)

	sessionId, token, err := sessionTokens.NewSession()
	if err != nil {
		return "", err
	}
	setSessionCookie(w, token)
	log.Debugf("New session %s started", sessionId)
	return sessionId, nil
}

// renewSession reissues the cookie of an active session once it is past half of its lifetime.
func renewSession(w http.ResponseWriter, sessionId string, expiryValues []string) {
	if len(expiryValues) == 0 {
		return
	}
	expiry, err := time.Parse(time.RFC3339, expiryValues[0])
	if err != nil || !sessionTokens.RenewDue(expiry) {
		return
	}
	token, err := sessionTokens.Issue(sessionId)
	if err != nil {
		log.Warnf("Failed to renew session %s: %v", sessionId, err)
		return
	}
	setSessionCookie(w, token)
	log.Tracef("Session %s renewed", sessionId)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func recoverPanic(w http.ResponseWriter) {
	if err := recover(); err != nil {
		log.Errorf("Request failed with panic: %v", err)
		log.Tracef("Stacktrace: %v", string(debug.Stack()))
		debug.PrintStack()
		controller.RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusInternalServerError,
			Message: http.StatusText(http.StatusInternalServerError),
			Debug:   fmt.Sprintf("%v", err),
		})
	}
}
