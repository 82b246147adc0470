package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/secctx"
	"github.com/Netcracker/qubership-autonet-service/service"
	"github.com/Netcracker/qubership-autonet-service/view"
	"github.com/gorilla/mux"
	"github.com/shaj13/go-guardian/v2/auth"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

const testSessionId = "7b0c6f6e-4f0e-4d55-9d8a-3c1f7f6b2a10"

type stubAnalysisClient struct {
	result *view.AnalysisResult
}

func (s stubAnalysisClient) Analyze(ctx context.Context, input view.TopologyInput) (*view.AnalysisResult, error) {
	result := *s.result
	return &result, nil
}

func stubResult() *view.AnalysisResult {
	return &view.AnalysisResult{
		DeviceConfigs: []view.DeviceConfig{
			{
				DeviceName: "Edge Router",
				Config:     "hostname EdgeRouter",
				ValidationFindings: []view.ValidationFinding{
					{Severity: view.SeverityError, Message: "no default route"},
				},
			},
		},
		AnsiblePlaybook: "- hosts: routers",
		Assessment:      "Single uplink.",
		Recommendations: []string{"Add redundancy"},
		TopologySketch:  `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
	}
}

func withSession(sessionId string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r.WithContext(secctx.MakeSessionContext(r, sessionId)))
	}
}

func newTestRouter(sessionId string) *mux.Router {
	store := repository.NewLocalSessionStore(time.Hour)
	historyService := service.NewAnalysisHistoryService(nil)
	inputService := service.NewInputService(store)
	gate := service.NewDisclaimerGate(store)
	analysisService := service.NewAnalysisService(store, stubAnalysisClient{result: stubResult()}, historyService)
	resultsService := service.NewResultsService(store, analysisService, gate)
	sessionService := service.NewSessionService(inputService, analysisService, resultsService, gate)

	sessionController := NewSessionController(sessionService)
	inputController := NewInputController(inputService, sessionService, 1<<20)
	analysisController := NewAnalysisController(inputService, analysisService, sessionService, historyService)
	resultsController := NewResultsController(resultsService, gate, sessionService)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/session", withSession(sessionId, sessionController.GetSession)).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/input/mode", withSession(sessionId, inputController.SetMode)).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/input/file", withSession(sessionId, inputController.UploadFile)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/input/text", withSession(sessionId, inputController.SetText)).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/analysis", withSession(sessionId, analysisController.Submit)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/analysis/reset", withSession(sessionId, analysisController.Reset)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/history", withSession(sessionId, analysisController.GetHistory)).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/disclaimer", withSession(sessionId, resultsController.SetAcknowledgement)).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/results/sections/{section}/toggle", withSession(sessionId, resultsController.ToggleSection)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/sketch/zoom/{direction}", withSession(sessionId, resultsController.Zoom)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/sketch/download", withSession(sessionId, resultsController.DownloadSketch)).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/results/configs/{index}/copy", withSession(sessionId, resultsController.CopyConfig)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/configs/{index}/download", withSession(sessionId, resultsController.DownloadConfig)).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/results/playbook/copy", withSession(sessionId, resultsController.CopyPlaybook)).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/playbook/download", withSession(sessionId, resultsController.DownloadPlaybook)).Methods(http.MethodGet)
	return router
}

func doRequest(t *testing.T, router http.Handler, method string, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) view.SessionPage {
	t.Helper()
	var page view.SessionPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page %q: %v", rec.Body.String(), err)
	}
	return page
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) exception.CustomError {
	t.Helper()
	var customError exception.CustomError
	if err := json.Unmarshal(rec.Body.Bytes(), &customError); err != nil {
		t.Fatalf("failed to decode error %q: %v", rec.Body.String(), err)
	}
	return customError
}

func waitForStage(t *testing.T, router http.Handler, stage view.Stage) view.SessionPage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		page := decodePage(t, doRequest(t, router, http.MethodGet, "/api/v1/session", nil))
		if page.Stage == stage {
			return page
		}
		if time.Now().After(deadline) {
			t.Fatalf("session did not reach stage %s, last stage %s", stage, page.Stage)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func submitText(t *testing.T, router http.Handler) view.SessionPage {
	t.Helper()
	if rec := doRequest(t, router, http.MethodPut, "/api/v1/input/mode", view.UpdateModeReq{Mode: view.InputModeText}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(t, router, http.MethodPut, "/api/v1/input/text", view.UpdateTextReq{Text: "Edge Router Gi0/0 to ISP"}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(t, router, http.MethodPost, "/api/v1/analysis", nil); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	return waitForStage(t, router, view.StageResults)
}

func TestGetSessionStartsWithForm(t *testing.T) {
	router := newTestRouter(testSessionId)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := decodePage(t, rec)
	if page.Stage != view.StageForm || page.Form == nil {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Form.Mode != view.InputModeFile || page.Form.SubmitEnabled {
		t.Fatalf("unexpected form %+v", page.Form)
	}
}

func TestSubmitWithoutInputIsRejected(t *testing.T) {
	router := newTestRouter(testSessionId)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/analysis", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if customError := decodeError(t, rec); customError.Code != exception.SubmissionNotAllowed {
		t.Fatalf("unexpected error %+v", customError)
	}
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	router := newTestRouter(testSessionId)
	rec := doRequest(t, router, http.MethodPut, "/api/v1/input/mode", map[string]string{"mode": "voice"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if customError := decodeError(t, rec); customError.Code != exception.InvalidInputMode {
		t.Fatalf("unexpected error %+v", customError)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/input/mode", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if customError := decodeError(t, rec); rec.Code != http.StatusBadRequest || customError.Code != exception.BadRequestBody {
		t.Fatalf("unexpected response %d %+v", rec.Code, customError)
	}
}

func TestUploadFile(t *testing.T) {
	router := newTestRouter(testSessionId)

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		part.Write(content)
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/input/file", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("lab.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	page := decodePage(t, rec)
	if page.Form.FileName != "lab.png" || !page.Form.SubmitEnabled {
		t.Fatalf("unexpected form %+v", page.Form)
	}

	rec = upload("notes.txt", []byte("just some notes"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if customError := decodeError(t, rec); customError.Code != exception.UnsupportedFileType {
		t.Fatalf("unexpected error %+v", customError)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/input/file", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if customError := decodeError(t, rec); rec.Code != http.StatusBadRequest || customError.Code != exception.IncorrectMultipartFile {
		t.Fatalf("unexpected response %d %+v", rec.Code, customError)
	}
}

func TestAnalysisFlow(t *testing.T) {
	router := newTestRouter(testSessionId)
	page := submitText(t, router)
	if page.Results == nil || page.Acknowledged {
		t.Fatalf("unexpected page %+v", page)
	}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/results/playbook/download", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("download before acknowledgement must be rejected, got %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodPost, "/api/v1/results/playbook/copy", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("copy before acknowledgement must be a no-op, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPut, "/api/v1/disclaimer", view.AcknowledgeReq{Acknowledged: true})
	if rec.Code != http.StatusOK || !decodePage(t, rec).Acknowledged {
		t.Fatalf("unexpected acknowledgement response %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/results/configs/0/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "hostname EdgeRouter" {
		t.Fatalf("unexpected config %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Edge_Router_config.txt"` {
		t.Fatalf("unexpected content disposition %q", got)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/results/configs/0/copy", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var copied view.CopyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &copied); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if copied.Content != "hostname EdgeRouter" || !copied.Copied {
		t.Fatalf("unexpected copy response %+v", copied)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/results/sketch/download", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected sketch download %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/results/configs/5/download", nil)
	if customError := decodeError(t, rec); rec.Code != http.StatusNotFound || customError.Code != exception.ArtifactNotFound {
		t.Fatalf("unexpected response %d %+v", rec.Code, customError)
	}
	rec = doRequest(t, router, http.MethodGet, "/api/v1/results/configs/first/download", nil)
	if customError := decodeError(t, rec); rec.Code != http.StatusBadRequest || customError.Code != exception.InvalidParameterValue {
		t.Fatalf("unexpected response %d %+v", rec.Code, customError)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/analysis/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page = decodePage(t, rec)
	if page.Stage != view.StageForm || !page.Acknowledged {
		t.Fatalf("reset must return to the form and keep acknowledgement, got %+v", page)
	}
	if page.Form.Mode != view.InputModeText || page.Form.Text != "Edge Router Gi0/0 to ISP" {
		t.Fatalf("reset must keep the draft, got %+v", page.Form)
	}
}

func TestResultsViewControls(t *testing.T) {
	router := newTestRouter(testSessionId)
	submitText(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/results/sketch/zoom/in", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := decodePage(t, rec)
	sketch := page.Results.Sections[0]
	if sketch.Name != view.SectionSketch || sketch.Sketch == nil || sketch.Sketch.ZoomLabel != "120%" {
		t.Fatalf("unexpected sketch section %+v", sketch)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/results/sketch/zoom/sideways", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/results/sections/playbook/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, part := range decodePage(t, rec).Results.Sections {
		if part.Name == view.SectionPlaybook && !part.Open {
			t.Fatal("playbook section must be open after toggle")
		}
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/results/sections/metrics/toggle", nil)
	if customError := decodeError(t, rec); rec.Code != http.StatusNotFound || customError.Code != exception.UnknownSection {
		t.Fatalf("unexpected response %d %+v", rec.Code, customError)
	}
}

func TestResultsActionsOutsideResults(t *testing.T) {
	router := newTestRouter(testSessionId)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/results/sketch/zoom/in", nil)
	if customError := decodeError(t, rec); rec.Code != http.StatusNotFound || customError.Code != exception.NoResults {
		t.Fatalf("unexpected response %d %+v", rec.Code, customError)
	}
}

func TestSubmitLogsApiClient(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	router := newTestRouter(testSessionId)
	client := auth.NewDefaultUser("api-key-0", "api-key-0", []string{}, auth.Extensions{})
	withClient := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, auth.RequestWithUser(client, r))
	})

	submitText(t, withClient)

	for _, entry := range hook.AllEntries() {
		if entry.Level == log.InfoLevel && strings.Contains(entry.Message, "submitted by api client api-key-0") {
			if !strings.Contains(entry.Message, testSessionId) {
				t.Fatalf("submit log must name the session, got %q", entry.Message)
			}
			return
		}
	}
	t.Fatal("submit by an api client must be logged with the client id")
}

func TestGetHistoryWithoutDatabase(t *testing.T) {
	router := newTestRouter(testSessionId)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var history view.AnalysisHistory
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history.Analyses) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}

func TestHealthController(t *testing.T) {
	readyChan := make(chan bool)
	health := NewHealthController(readyChan)

	rec := httptest.NewRecorder()
	health.HandleReadyRequest(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before ready, got %d", rec.Code)
	}

	readyChan <- true
	deadline := time.Now().Add(time.Second)
	for {
		rec = httptest.NewRecorder()
		health.HandleReadyRequest(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if rec.Code == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 200 after ready, got %d", rec.Code)
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = httptest.NewRecorder()
	health.HandleLiveRequest(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
