package controller

import (
	"net/http"

	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/secctx"
	"github.com/Netcracker/qubership-autonet-service/service"
	"github.com/Netcracker/qubership-autonet-service/view"
)

type ResultsController interface {
	SetAcknowledgement(w http.ResponseWriter, r *http.Request)
	ToggleSection(w http.ResponseWriter, r *http.Request)
	Zoom(w http.ResponseWriter, r *http.Request)
	CopyConfig(w http.ResponseWriter, r *http.Request)
	DownloadConfig(w http.ResponseWriter, r *http.Request)
	CopyPlaybook(w http.ResponseWriter, r *http.Request)
	DownloadPlaybook(w http.ResponseWriter, r *http.Request)
	DownloadSketch(w http.ResponseWriter, r *http.Request)
}

func NewResultsController(resultsService service.ResultsService, gate service.DisclaimerGate, sessionService service.SessionService) ResultsController {
	return &resultsControllerImpl{
		resultsService: resultsService,
		gate:           gate,
		sessionService: sessionService,
	}
}

type resultsControllerImpl struct {
	resultsService service.ResultsService
	gate           service.DisclaimerGate
	sessionService service.SessionService
}

func (c resultsControllerImpl) SetAcknowledgement(w http.ResponseWriter, r *http.Request) {
	var req view.AcknowledgeReq
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, "Failed to decode acknowledgement", err)
		return
	}
	if err := c.gate.SetAcknowledged(r.Context(), secctx.GetSessionId(r.Context()), req.Acknowledged); err != nil {
		respondWithError(w, "Failed to set acknowledgement", err)
		return
	}
	respondWithPage(r.Context(), w, http.StatusOK, c.sessionService)
}

func (c resultsControllerImpl) ToggleSection(w http.ResponseWriter, r *http.Request) {
	section, err := getStringParam(r, "section")
	if err != nil {
		respondWithError(w, "Failed to read section", err)
		return
	}
	if err := c.resultsService.ToggleSection(r.Context(), secctx.GetSessionId(r.Context()), view.SectionName(section)); err != nil {
		respondWithError(w, "Failed to toggle section", err)
		return
	}
	respondWithPage(r.Context(), w, http.StatusOK, c.sessionService)
}

func (c resultsControllerImpl) Zoom(w http.ResponseWriter, r *http.Request) {
	direction, err := getStringParam(r, "direction")
	if err != nil {
		respondWithError(w, "Failed to read zoom direction", err)
		return
	}
	if direction != "in" && direction != "out" {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.InvalidParameterValue,
			Message: exception.InvalidParameterValueMsg,
			Params:  map[string]interface{}{"param": "direction", "value": direction},
		})
		return
	}
	if err := c.resultsService.Zoom(r.Context(), secctx.GetSessionId(r.Context()), direction == "in"); err != nil {
		respondWithError(w, "Failed to zoom sketch", err)
		return
	}
	respondWithPage(r.Context(), w, http.StatusOK, c.sessionService)
}

func (c resultsControllerImpl) CopyConfig(w http.ResponseWriter, r *http.Request) {
	index, err := getIntParam(r, "index")
	if err != nil {
		respondWithError(w, "Failed to read device config index", err)
		return
	}
	c.copyArtifact(w, r, view.ArtifactRef{Kind: view.ArtifactDeviceConfig, Index: index})
}

func (c resultsControllerImpl) DownloadConfig(w http.ResponseWriter, r *http.Request) {
	index, err := getIntParam(r, "index")
	if err != nil {
		respondWithError(w, "Failed to read device config index", err)
		return
	}
	c.downloadArtifact(w, r, view.ArtifactRef{Kind: view.ArtifactDeviceConfig, Index: index})
}

func (c resultsControllerImpl) CopyPlaybook(w http.ResponseWriter, r *http.Request) {
	c.copyArtifact(w, r, view.ArtifactRef{Kind: view.ArtifactPlaybook})
}

func (c resultsControllerImpl) DownloadPlaybook(w http.ResponseWriter, r *http.Request) {
	c.downloadArtifact(w, r, view.ArtifactRef{Kind: view.ArtifactPlaybook})
}

func (c resultsControllerImpl) DownloadSketch(w http.ResponseWriter, r *http.Request) {
	c.downloadArtifact(w, r, view.ArtifactRef{Kind: view.ArtifactSketch})
}

func (c resultsControllerImpl) copyArtifact(w http.ResponseWriter, r *http.Request, ref view.ArtifactRef) {
	copied, err := c.resultsService.Copy(r.Context(), secctx.GetSessionId(r.Context()), ref)
	if err != nil {
		respondWithError(w, "Failed to copy "+ref.Key(), err)
		return
	}
	if copied == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondWithJson(w, http.StatusOK, copied)
}

func (c resultsControllerImpl) downloadArtifact(w http.ResponseWriter, r *http.Request, ref view.ArtifactRef) {
	download, err := c.resultsService.Download(r.Context(), secctx.GetSessionId(r.Context()), ref)
	if err != nil {
		respondWithError(w, "Failed to download "+ref.Key(), err)
		return
	}
	respondWithFile(w, download.Content, download.Filename, download.MimeType)
}
