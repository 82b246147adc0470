package controller

import (
	"context"
	"net/http"

	"github.com/Netcracker/qubership-autonet-service/secctx"
	"github.com/Netcracker/qubership-autonet-service/service"
)

type SessionController interface {
	GetSession(w http.ResponseWriter, r *http.Request)
}

func NewSessionController(sessionService service.SessionService) SessionController {
	return &sessionControllerImpl{sessionService: sessionService}
}

type sessionControllerImpl struct {
	sessionService service.SessionService
}

func (s sessionControllerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	respondWithPage(r.Context(), w, http.StatusOK, s.sessionService)
}

// respondWithPage answers a state changing request with the updated page of the session.
func respondWithPage(ctx context.Context, w http.ResponseWriter, code int, sessionService service.SessionService) {
	page, err := sessionService.GetPage(ctx, secctx.GetSessionId(ctx))
	if err != nil {
		respondWithError(w, "Failed to get session page", err)
		return
	}
	respondWithJson(w, code, page)
}
