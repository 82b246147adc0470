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

package controller

import (
	"io"
	"net/http"

	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/secctx"
	"github.com/Netcracker/qubership-autonet-service/service"
	"github.com/Netcracker/qubership-autonet-service/view"
	log "github.com/sirupsen/logrus"
)

const inputFileField = "file"

type InputController interface {
	SetMode(w http.ResponseWriter, r *http.Request)
	UploadFile(w http.ResponseWriter, r *http.Request)
	SetText(w http.ResponseWriter, r *http.Request)
}

func NewInputController(inputService service.InputService, sessionService service.SessionService, maxUploadSize int64) InputController {
	return &inputControllerImpl{
		inputService:   inputService,
		sessionService: sessionService,
		maxUploadSize:  maxUploadSize,
	}
}

type inputControllerImpl struct {
	inputService   service.InputService
	sessionService service.SessionService
	maxUploadSize  int64
}

func (i inputControllerImpl) SetMode(w http.ResponseWriter, r *http.Request) {
	var req view.UpdateModeReq
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, "Failed to decode input mode", err)
		return
	}
	if err := i.inputService.SetMode(r.Context(), secctx.GetSessionId(r.Context()), req.Mode); err != nil {
		respondWithError(w, "Failed to set input mode", err)
		return
	}
	respondWithPage(r.Context(), w, http.StatusOK, i.sessionService)
}

func (i inputControllerImpl) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, i.maxUploadSize)
	if err := r.ParseMultipartForm(i.maxUploadSize); err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.IncorrectMultipartFile,
			Message: exception.IncorrectMultipartFileMsg,
			Debug:   err.Error(),
		})
		return
	}
	defer func() {
		err := r.MultipartForm.RemoveAll()
		if err != nil {
			log.Debugf("failed to remove multipart form temp data: %s", err.Error())
		}
	}()

	file, fileHeader, err := r.FormFile(inputFileField)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.IncorrectMultipartFile,
			Message: exception.IncorrectMultipartFileMsg,
			Debug:   err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.IncorrectMultipartFile,
			Message: exception.IncorrectMultipartFileMsg,
			Debug:   err.Error(),
		})
		return
	}

	if err := i.inputService.SetFile(r.Context(), secctx.GetSessionId(r.Context()), fileHeader.Filename, data); err != nil {
		respondWithError(w, "Failed to select file", err)
		return
	}
	respondWithPage(r.Context(), w, http.StatusOK, i.sessionService)
}

func (i inputControllerImpl) SetText(w http.ResponseWriter, r *http.Request) {
	var req view.UpdateTextReq
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, "Failed to decode topology description", err)
		return
	}
	if err := i.inputService.SetText(r.Context(), secctx.GetSessionId(r.Context()), req.Text); err != nil {
		respondWithError(w, "Failed to set topology description", err)
		return
	}
	respondWithPage(r.Context(), w, http.StatusOK, i.sessionService)
}
