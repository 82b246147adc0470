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
	"net/http"
	"time"

	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/utils"
	"github.com/Netcracker/qubership-autonet-service/view"
	log "github.com/sirupsen/logrus"
)

// ResultsService handles the results view of a session: rendering, section toggles,
// sketch zoom, and the gated copy and download actions.
type ResultsService interface {
	Render(ctx context.Context, sessionId string, result view.AnalysisResult) (*view.ResultsPage, error)
	ToggleSection(ctx context.Context, sessionId string, section view.SectionName) error
	Zoom(ctx context.Context, sessionId string, in bool) error
	// Copy returns nil without error when the disclaimer is not acknowledged.
	Copy(ctx context.Context, sessionId string, ref view.ArtifactRef) (*view.CopyResponse, error)
	Download(ctx context.Context, sessionId string, ref view.ArtifactRef) (*view.Download, error)
}

func NewResultsService(store repository.SessionStore, analysisService AnalysisService, gate DisclaimerGate) ResultsService {
	return &resultsServiceImpl{
		store:           store,
		analysisService: analysisService,
		gate:            gate,
		now:             time.Now,
	}
}

type resultsServiceImpl struct {
	store           repository.SessionStore
	analysisService AnalysisService
	gate            DisclaimerGate
	now             func() time.Time
}

func (r resultsServiceImpl) Render(ctx context.Context, sessionId string, result view.AnalysisResult) (*view.ResultsPage, error) {
	acknowledged, err := r.gate.IsAcknowledged(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	ui, err := r.getUIState(ctx, sessionId, result)
	if err != nil {
		return nil, err
	}
	page := RenderResults(result, acknowledged, ui, r.now())
	return &page, nil
}

func (r resultsServiceImpl) ToggleSection(ctx context.Context, sessionId string, section view.SectionName) error {
	result, err := r.getResult(ctx, sessionId)
	if err != nil {
		return err
	}
	if !section.Valid() || (section == view.SectionSketch && !result.HasSketch()) {
		return &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.UnknownSection,
			Message: exception.UnknownSectionMsg,
			Params:  map[string]interface{}{"section": section},
		}
	}
	return r.updateUIState(ctx, sessionId, *result, func(ui *view.ResultsUIState) {
		ui.Open[section] = !ui.Open[section]
	})
}

func (r resultsServiceImpl) Zoom(ctx context.Context, sessionId string, in bool) error {
	result, err := r.getResult(ctx, sessionId)
	if err != nil {
		return err
	}
	if !result.HasSketch() {
		return &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.ArtifactNotFound,
			Message: exception.ArtifactNotFoundMsg,
			Params:  map[string]interface{}{"artifact": view.ArtifactSketch},
		}
	}
	return r.updateUIState(ctx, sessionId, *result, func(ui *view.ResultsUIState) {
		if in {
			ui.ZoomPercent = ZoomIn(ui.ZoomPercent)
		} else {
			ui.ZoomPercent = ZoomOut(ui.ZoomPercent)
		}
	})
}

func (r resultsServiceImpl) Copy(ctx context.Context, sessionId string, ref view.ArtifactRef) (*view.CopyResponse, error) {
	result, err := r.getResult(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if ref.Kind == view.ArtifactSketch {
		return nil, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.ArtifactNotCopyable,
			Message: exception.ArtifactNotCopyableMsg,
			Params:  map[string]interface{}{"artifact": ref.Key()},
		}
	}
	artifact, err := resolveArtifact(*result, ref)
	if err != nil {
		return nil, err
	}

	// the permission is checked at the moment of the action, not when the page was rendered
	acknowledged, err := r.gate.IsAcknowledged(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if !acknowledged {
		log.Debugf("session %s: copy of %s ignored, disclaimer is not acknowledged", sessionId, ref.Key())
		return nil, nil
	}

	err = r.updateUIState(ctx, sessionId, *result, func(ui *view.ResultsUIState) {
		ui.CopiedAt[ref.Key()] = r.now()
	})
	if err != nil {
		return nil, err
	}
	return &view.CopyResponse{Content: string(artifact.Content), Copied: true}, nil
}

func (r resultsServiceImpl) Download(ctx context.Context, sessionId string, ref view.ArtifactRef) (*view.Download, error) {
	result, err := r.getResult(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	artifact, err := resolveArtifact(*result, ref)
	if err != nil {
		return nil, err
	}
	acknowledged, err := r.gate.IsAcknowledged(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if !acknowledged {
		return nil, &exception.CustomError{
			Status:  http.StatusForbidden,
			Code:    exception.DisclaimerNotAcknowledged,
			Message: exception.DisclaimerNotAcknowledgedMsg,
		}
	}
	return artifact, nil
}

func (r resultsServiceImpl) getResult(ctx context.Context, sessionId string) (*view.AnalysisResult, error) {
	state, err := r.analysisService.GetState(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	results, ok := state.(view.ResultsState)
	if !ok {
		return nil, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.NoResults,
			Message: exception.NoResultsMsg,
			Params:  map[string]interface{}{"state": state.Stage()},
		}
	}
	return &results.Result, nil
}

func (r resultsServiceImpl) getUIState(ctx context.Context, sessionId string, result view.AnalysisResult) (view.ResultsUIState, error) {
	ui := DefaultResultsUIState(result)
	if _, err := r.store.Get(ctx, sessionId, repository.SessionKeyResultsUI, &ui); err != nil {
		return view.ResultsUIState{}, err
	}
	if ui.Open == nil {
		ui.Open = make(map[view.SectionName]bool)
	}
	if ui.CopiedAt == nil {
		ui.CopiedAt = make(map[string]time.Time)
	}
	return ui, nil
}

func (r resultsServiceImpl) updateUIState(ctx context.Context, sessionId string, result view.AnalysisResult, update func(ui *view.ResultsUIState)) error {
	unlock, err := r.store.Lock(ctx, sessionId)
	if err != nil {
		return err
	}
	defer unlock()

	ui, err := r.getUIState(ctx, sessionId, result)
	if err != nil {
		return err
	}
	update(&ui)
	return r.store.Put(ctx, sessionId, repository.SessionKeyResultsUI, ui)
}

func resolveArtifact(result view.AnalysisResult, ref view.ArtifactRef) (*view.Download, error) {
	notFound := &exception.CustomError{
		Status:  http.StatusNotFound,
		Code:    exception.ArtifactNotFound,
		Message: exception.ArtifactNotFoundMsg,
		Params:  map[string]interface{}{"artifact": ref.Key()},
	}
	switch ref.Kind {
	case view.ArtifactDeviceConfig:
		if ref.Index < 0 || ref.Index >= len(result.DeviceConfigs) {
			return nil, notFound
		}
		dc := result.DeviceConfigs[ref.Index]
		return &view.Download{Content: []byte(dc.Config), Filename: utils.ConfigFileName(dc.DeviceName), MimeType: configMimeType}, nil
	case view.ArtifactPlaybook:
		return &view.Download{Content: []byte(result.AnsiblePlaybook), Filename: playbookFileName, MimeType: configMimeType}, nil
	case view.ArtifactSketch:
		if !result.HasSketch() {
			return nil, notFound
		}
		return &view.Download{Content: []byte(result.TopologySketch), Filename: sketchFileName, MimeType: sketchMimeType}, nil
	}
	return nil, notFound
}
