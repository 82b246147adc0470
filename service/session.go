package service

import (
	"context"

	"github.com/Netcracker/qubership-autonet-service/view"
)

// SessionService assembles the complete page of a session from its parts.
type SessionService interface {
	GetPage(ctx context.Context, sessionId string) (*view.SessionPage, error)
}

func NewSessionService(inputService InputService, analysisService AnalysisService, resultsService ResultsService, gate DisclaimerGate) SessionService {
	return &sessionServiceImpl{
		inputService:    inputService,
		analysisService: analysisService,
		resultsService:  resultsService,
		gate:            gate,
	}
}

type sessionServiceImpl struct {
	inputService    InputService
	analysisService AnalysisService
	resultsService  ResultsService
	gate            DisclaimerGate
}

func (s sessionServiceImpl) GetPage(ctx context.Context, sessionId string) (*view.SessionPage, error) {
	state, err := s.analysisService.GetState(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	acknowledged, err := s.gate.IsAcknowledged(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	page := view.SessionPage{
		Stage:        state.Stage(),
		Acknowledged: acknowledged,
	}

	switch st := state.(type) {
	case view.FormState:
		draft, err := s.inputService.GetDraft(ctx, sessionId)
		if err != nil {
			return nil, err
		}
		form := s.inputService.MakeFormView(*draft, st.Error)
		page.Form = &form
	case view.LoadingState:
		page.Loading = &view.LoadingView{
			Message:   view.AnalyzingMessage,
			Hint:      view.AnalyzingHint,
			InputKind: st.InputKind,
			InputName: st.InputName,
			StartedAt: st.StartedAt,
		}
	case view.ResultsState:
		results, err := s.resultsService.Render(ctx, sessionId, st.Result)
		if err != nil {
			return nil, err
		}
		page.Results = results
	}
	return &page, nil
}
