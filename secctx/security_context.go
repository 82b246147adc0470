package secctx

import (
	"context"
	"net/http"

	"github.com/shaj13/go-guardian/v2/auth"
)

type SecurityContext interface {
	GetSessionId() string
	GetUserId() string
}

// MakeSessionContext binds the browser session and, when api keys are enabled, the authenticated client to the request.
func MakeSessionContext(r *http.Request, sessionId string) context.Context {
	userId := ""
	if user := auth.User(r); user != nil {
		userId = user.GetID()
	}
	return context.WithValue(r.Context(), "secCtx", securityContextImpl{
		sessionId: sessionId,
		userId:    userId,
	})
}

type securityContextImpl struct {
	sessionId string
	userId    string
}

func (ctx securityContextImpl) GetSessionId() string { return ctx.sessionId }

func (ctx securityContextImpl) GetUserId() string { return ctx.userId }

func GetSessionId(ctx context.Context) string {
	val := ctx.Value("secCtx")
	if val == nil {
		return ""
	}
	return val.(securityContextImpl).sessionId
}

func GetUserId(ctx context.Context) string {
	val := ctx.Value("secCtx")
	if val == nil {
		return ""
	}
	return val.(securityContextImpl).userId
}
