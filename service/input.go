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
	"sort"
	"strings"

	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/view"
	log "github.com/sirupsen/logrus"
)

// InputService collects exactly one topology description per session.
type InputService interface {
	GetDraft(ctx context.Context, sessionId string) (*view.InputDraft, error)
	SetMode(ctx context.Context, sessionId string, mode view.InputMode) error
	// SetFile is the only way a file gets into the draft. It replaces a previously selected file.
	SetFile(ctx context.Context, sessionId string, name string, data []byte) error
	SetText(ctx context.Context, sessionId string, text string) error
	// Submit builds the topology input and hands it to onSubmit. onSubmit is not called when the draft can not be submitted.
	Submit(ctx context.Context, sessionId string, onSubmit func(input view.TopologyInput) error) error
	MakeFormView(draft view.InputDraft, errorMsg string) view.FormView
}

func NewInputService(store repository.SessionStore) InputService {
	return &inputServiceImpl{store: store}
}

type inputServiceImpl struct {
	store repository.SessionStore
}

func (i inputServiceImpl) GetDraft(ctx context.Context, sessionId string) (*view.InputDraft, error) {
	draft := view.NewInputDraft()
	_, err := i.store.Get(ctx, sessionId, repository.SessionKeyDraft, &draft)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (i inputServiceImpl) SetMode(ctx context.Context, sessionId string, mode view.InputMode) error {
	if !mode.Valid() {
		return &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.InvalidInputMode,
			Message: exception.InvalidInputModeMsg,
			Params:  map[string]interface{}{"mode": mode},
		}
	}
	return i.updateDraft(ctx, sessionId, func(draft *view.InputDraft) {
		draft.Mode = mode
	})
}

func (i inputServiceImpl) SetFile(ctx context.Context, sessionId string, name string, data []byte) error {
	mimeType, err := checkFileType(name, data)
	if err != nil {
		return err
	}
	log.Debugf("session %s selected file %s (%s, %d bytes)", sessionId, name, mimeType, len(data))
	return i.updateDraft(ctx, sessionId, func(draft *view.InputDraft) {
		draft.File = &view.FileDraft{Name: name, MimeType: mimeType, Data: data}
	})
}

func (i inputServiceImpl) SetText(ctx context.Context, sessionId string, text string) error {
	return i.updateDraft(ctx, sessionId, func(draft *view.InputDraft) {
		draft.Text = text
	})
}

func (i inputServiceImpl) Submit(ctx context.Context, sessionId string, onSubmit func(input view.TopologyInput) error) error {
	draft, err := i.GetDraft(ctx, sessionId)
	if err != nil {
		return err
	}
	if !draft.CanSubmit() {
		reason := "no file is selected"
		if draft.Mode == view.InputModeText {
			reason = "topology description is blank"
		}
		return &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.SubmissionNotAllowed,
			Message: exception.SubmissionNotAllowedMsg,
			Params:  map[string]interface{}{"reason": reason},
		}
	}

	var input view.TopologyInput
	if draft.Mode == view.InputModeFile {
		input, err = view.NewFileInput(draft.File.Data, draft.File.Name, draft.File.MimeType)
	} else {
		input, err = view.NewTextInput(draft.Text)
	}
	if err != nil {
		return err
	}
	return onSubmit(input)
}

func (i inputServiceImpl) MakeFormView(draft view.InputDraft, errorMsg string) view.FormView {
	form := view.FormView{
		Mode:          draft.Mode,
		Text:          draft.Text,
		SubmitEnabled: draft.CanSubmit(),
		Error:         errorMsg,
		AcceptedTypes: acceptedExtensions(),
		SizeHint:      view.AdvisorySizeHint,
	}
	if draft.File != nil {
		form.FileName = draft.File.Name
	}
	return form
}

func (i inputServiceImpl) updateDraft(ctx context.Context, sessionId string, update func(draft *view.InputDraft)) error {
	unlock, err := i.store.Lock(ctx, sessionId)
	if err != nil {
		return err
	}
	defer unlock()

	draft, err := i.GetDraft(ctx, sessionId)
	if err != nil {
		return err
	}
	update(draft)
	return i.store.Put(ctx, sessionId, repository.SessionKeyDraft, draft)
}

// checkFileType applies the allow-list to both the extension and the sniffed content.
func checkFileType(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.EmptyFile,
			Message: exception.EmptyFileMsg,
			Params:  map[string]interface{}{"name": name},
		}
	}
	mimeType, ok := view.AcceptedMimeType(name)
	detected := http.DetectContentType(data)
	if !ok || !strings.HasPrefix(detected, mimeType) {
		return "", &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.UnsupportedFileType,
			Message: exception.UnsupportedFileTypeMsg,
			Params:  map[string]interface{}{"name": name, "type": detected},
		}
	}
	return mimeType, nil
}

func acceptedExtensions() []string {
	result := make([]string, 0, len(view.AcceptedFileTypes))
	for ext := range view.AcceptedFileTypes {
		result = append(result, ext)
	}
	sort.Strings(result)
	return result
}
