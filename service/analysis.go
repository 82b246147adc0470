// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Netcracker/qubership-autonet-service/client"
	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/utils"
	"github.com/Netcracker/qubership-autonet-service/view"
	log "github.com/sirupsen/logrus"
)

const UnknownErrorMsg = "An unknown error occurred."
const StaleAnalysisMsg = "The analysis did not finish in time. Please try again."

// StaleAnalysisTimeout is how long a session may stay in loading. An older loading state has lost
// its analysis, e.g. the node running it was restarted, and is read as a failed cycle.
const StaleAnalysisTimeout = client.AnalyzerTimeout + time.Minute

// AnalysisService drives the form -> loading -> results state machine of a session.
// At most one analysis is in flight per session: submit is only accepted in the form state.
type AnalysisService interface {
	GetState(ctx context.Context, sessionId string) (view.AnalysisState, error)
	Submit(ctx context.Context, sessionId string, input view.TopologyInput) error
	Reset(ctx context.Context, sessionId string) error
}

func NewAnalysisService(store repository.SessionStore, analysisClient client.AnalysisClient, historyService AnalysisHistoryService) AnalysisService {
	return &analysisServiceImpl{
		store:          store,
		analysisClient: analysisClient,
		historyService: historyService,
		runAsync:       utils.SafeAsync,
		now:            time.Now,
		staleAfter:     StaleAnalysisTimeout,
	}
}

type analysisServiceImpl struct {
	store          repository.SessionStore
	analysisClient client.AnalysisClient
	historyService AnalysisHistoryService
	runAsync       func(f func())
	now            func() time.Time
	staleAfter     time.Duration
}

func (a analysisServiceImpl) GetState(ctx context.Context, sessionId string) (view.AnalysisState, error) {
	var data json.RawMessage
	found, err := a.store.Get(ctx, sessionId, repository.SessionKeyState, &data)
	if err != nil {
		return nil, err
	}
	if !found {
		return view.FormState{}, nil
	}
	state, err := view.UnmarshalState(data)
	if err != nil {
		return nil, err
	}
	if loading, ok := state.(view.LoadingState); ok && a.now().Sub(loading.StartedAt) > a.staleAfter {
		log.Debugf("session %s: analysis started at %s is stale", sessionId, loading.StartedAt.Format(time.RFC3339))
		return view.FormState{Error: StaleAnalysisMsg}, nil
	}
	return state, nil
}

func (a analysisServiceImpl) putState(ctx context.Context, sessionId string, state view.AnalysisState) error {
	data, err := view.MarshalState(state)
	if err != nil {
		return err
	}
	return a.store.Put(ctx, sessionId, repository.SessionKeyState, json.RawMessage(data))
}

func (a analysisServiceImpl) Submit(ctx context.Context, sessionId string, input view.TopologyInput) error {
	if input.Kind() == "" {
		return fmt.Errorf("topology input is empty")
	}

	unlock, err := a.store.Lock(ctx, sessionId)
	if err != nil {
		return err
	}
	state, err := a.GetState(ctx, sessionId)
	if err != nil {
		unlock()
		return err
	}
	switch state.(type) {
	case view.LoadingState:
		unlock()
		return &exception.CustomError{
			Status:  http.StatusConflict,
			Code:    exception.AnalysisInProgress,
			Message: exception.AnalysisInProgressMsg,
		}
	case view.ResultsState:
		unlock()
		return &exception.CustomError{
			Status:  http.StatusConflict,
			Code:    exception.InvalidStateTransition,
			Message: exception.InvalidStateTransitionMsg,
			Params:  map[string]interface{}{"action": "submit", "state": state.Stage()},
		}
	}

	loading := view.LoadingState{
		StartedAt: a.now(),
		InputKind: input.Kind(),
		InputName: input.Name(),
	}
	err = a.putState(ctx, sessionId, loading)
	unlock()
	if err != nil {
		return err
	}
	log.Infof("session %s: analysis started, input kind: %s, checksum: %s", sessionId, input.Kind(), utils.ShortHash(input.Bytes()))

	a.runAsync(func() {
		a.run(sessionId, input, loading.StartedAt)
	})
	return nil
}

func (a analysisServiceImpl) run(sessionId string, input view.TopologyInput, startedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), client.AnalyzerTimeout)
	defer cancel()
	result, err := a.analyze(ctx, input)
	a.complete(context.Background(), sessionId, input, startedAt, result, err)
}

// analyze never panics: a panicking client is reported as a failed analysis.
func (a analysisServiceImpl) analyze(ctx context.Context, input view.TopologyInput) (result *view.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Analysis client failed with panic: %v", r)
			log.Tracef("Stacktrace: %v", string(debug.Stack()))
			result = nil
			err = fmt.Errorf("analysis failed: %v", r)
		}
	}()

	result, err = a.analysisClient.Analyze(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("analyzer returned an unexpected response format: %w", err)
	}
	result.Normalize()
	return result, nil
}

func (a analysisServiceImpl) complete(ctx context.Context, sessionId string, input view.TopologyInput, startedAt time.Time, result *view.AnalysisResult, analysisErr error) {
	unlock, err := a.store.Lock(ctx, sessionId)
	if err != nil {
		// nothing else leaves the loading state, so writing without the lock is still safe
		log.Warnf("session %s: failed to lock session to complete analysis: %s", sessionId, err.Error())
		unlock = func() {}
	}
	defer unlock()

	state, err := a.GetState(ctx, sessionId)
	if err != nil {
		log.Errorf("session %s: failed to read state to complete analysis: %s", sessionId, err.Error())
		return
	}
	if state.Stage() != view.StageLoading {
		log.Warnf("session %s: analysis completed in unexpected state %s, result is dropped", sessionId, state.Stage())
		return
	}
	if loading := state.(view.LoadingState); !loading.StartedAt.Equal(startedAt) {
		log.Warnf("session %s: analysis started at %s was superseded, result is dropped", sessionId, startedAt.Format(time.RFC3339))
		return
	}

	var next view.AnalysisState
	errMsg := ""
	if analysisErr != nil {
		errMsg = FailureMessage(analysisErr)
		next = view.FormState{Error: errMsg}
		result = nil
		log.Infof("session %s: analysis failed after %dms: %s", sessionId, time.Since(startedAt).Milliseconds(), errMsg)
	} else {
		next = view.ResultsState{Result: *result, CompletedAt: a.now()}
		log.Infof("session %s: analysis finished after %dms, devices: %d, errors: %d", sessionId, time.Since(startedAt).Milliseconds(), len(result.DeviceConfigs), result.ErrorCount())
	}

	if err := a.putState(ctx, sessionId, next); err != nil {
		log.Errorf("session %s: failed to store analysis outcome: %s", sessionId, err.Error())
		return
	}
	if err := a.store.Delete(ctx, sessionId, repository.SessionKeyResultsUI); err != nil {
		log.Warnf("session %s: failed to clear results view state: %s", sessionId, err.Error())
	}

	a.historyService.RecordCompletion(ctx, sessionId, input, startedAt, result, errMsg)
}

func (a analysisServiceImpl) Reset(ctx context.Context, sessionId string) error {
	unlock, err := a.store.Lock(ctx, sessionId)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := a.GetState(ctx, sessionId)
	if err != nil {
		return err
	}
	if state.Stage() == view.StageLoading {
		return &exception.CustomError{
			Status:  http.StatusConflict,
			Code:    exception.InvalidStateTransition,
			Message: exception.InvalidStateTransitionMsg,
			Params:  map[string]interface{}{"action": "reset", "state": state.Stage()},
		}
	}
	if err := a.putState(ctx, sessionId, view.FormState{}); err != nil {
		return err
	}
	log.Debugf("session %s: reset from %s", sessionId, state.Stage())
	return a.store.Delete(ctx, sessionId, repository.SessionKeyResultsUI)
}

// FailureMessage is the text shown on the form after a failed analysis.
func FailureMessage(err error) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return UnknownErrorMsg
	}
	return err.Error()
}
