package controller

import (
	"net/http"

	"github.com/Netcracker/qubership-autonet-service/secctx"
	"github.com/Netcracker/qubership-autonet-service/service"
	"github.com/Netcracker/qubership-autonet-service/view"
	log "github.com/sirupsen/logrus"
)

type AnalysisController interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

func NewAnalysisController(inputService service.InputService, analysisService service.AnalysisService,
	sessionService service.SessionService, historyService service.AnalysisHistoryService) AnalysisController {
	return &analysisControllerImpl{
		inputService:    inputService,
		analysisService: analysisService,
		sessionService:  sessionService,
		historyService:  historyService,
	}
}

type analysisControllerImpl struct {
	inputService    service.InputService
	analysisService service.AnalysisService
	sessionService  service.SessionService
	historyService  service.AnalysisHistoryService
}

// Submit starts the analysis and answers right away with the loading page.
func (a analysisControllerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionId := secctx.GetSessionId(ctx)
	err := a.inputService.Submit(ctx, sessionId, func(input view.TopologyInput) error {
		return a.analysisService.Submit(ctx, sessionId, input)
	})
	if err != nil {
		respondWithError(w, "Failed to submit topology for analysis", err)
		return
	}
	if userId := secctx.GetUserId(ctx); userId != "" {
		log.Infof("Analysis for session %s submitted by api client %s", sessionId, userId)
	}
	respondWithPage(ctx, w, http.StatusAccepted, a.sessionService)
}

func (a analysisControllerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	if err := a.analysisService.Reset(r.Context(), secctx.GetSessionId(r.Context())); err != nil {
		respondWithError(w, "Failed to reset analysis", err)
		return
	}
	respondWithPage(r.Context(), w, http.StatusOK, a.sessionService)
}

func (a analysisControllerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := a.historyService.GetSessionHistory(r.Context(), secctx.GetSessionId(r.Context()))
	if err != nil {
		respondWithError(w, "Failed to get analysis history", err)
		return
	}
	respondWithJson(w, http.StatusOK, history)
}
