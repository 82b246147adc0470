package view

import (
	"encoding/json"
	"fmt"
	"time"
)

type Stage string

const (
	StageForm    Stage = "form"
	StageLoading Stage = "loading"
	StageResults Stage = "results"
)

// AnalysisState is the view state of a session. Exactly one of
// FormState, LoadingState and ResultsState is active, each carrying
// only its own payload.
type AnalysisState interface {
	Stage() Stage
	sealed()
}

type FormState struct {
	Error string
}

type LoadingState struct {
	StartedAt time.Time
	InputKind InputKind
	InputName string
}

type ResultsState struct {
	Result      AnalysisResult
	CompletedAt time.Time
}

func (FormState) Stage() Stage    { return StageForm }
func (LoadingState) Stage() Stage { return StageLoading }
func (ResultsState) Stage() Stage { return StageResults }

func (FormState) sealed()    {}
func (LoadingState) sealed() {}
func (ResultsState) sealed() {}

type stateEnvelope struct {
	Stage       Stage           `json:"stage"`
	Error       string          `json:"error,omitempty"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	InputKind   InputKind       `json:"inputKind,omitempty"`
	InputName   string          `json:"inputName,omitempty"`
	Result      *AnalysisResult `json:"result,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

func MarshalState(state AnalysisState) ([]byte, error) {
	var env stateEnvelope
	switch s := state.(type) {
	case FormState:
		env = stateEnvelope{Stage: StageForm, Error: s.Error}
	case LoadingState:
		env = stateEnvelope{Stage: StageLoading, StartedAt: &s.StartedAt, InputKind: s.InputKind, InputName: s.InputName}
	case ResultsState:
		env = stateEnvelope{Stage: StageResults, Result: &s.Result, CompletedAt: &s.CompletedAt}
	default:
		return nil, fmt.Errorf("unknown analysis state %T", state)
	}
	return json.Marshal(env)
}

func UnmarshalState(data []byte) (AnalysisState, error) {
	var env stateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Stage {
	case StageForm:
		return FormState{Error: env.Error}, nil
	case StageLoading:
		s := LoadingState{InputKind: env.InputKind, InputName: env.InputName}
		if env.StartedAt != nil {
			s.StartedAt = *env.StartedAt
		}
		return s, nil
	case StageResults:
		if env.Result == nil {
			return nil, fmt.Errorf("results state without result")
		}
		s := ResultsState{Result: *env.Result}
		if env.CompletedAt != nil {
			s.CompletedAt = *env.CompletedAt
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown stage '%s'", env.Stage)
}
