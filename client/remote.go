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

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Netcracker/qubership-autonet-service/view"
	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

// RemoteAnalyzeRequest is the body sent to an external analyzer service.
type RemoteAnalyzeRequest struct {
	Kind     view.InputKind `json:"kind"`
	Text     string         `json:"text,omitempty"`
	FileName string         `json:"fileName,omitempty"`
	MimeType string         `json:"mimeType,omitempty"`
	Data     []byte         `json:"data,omitempty"`
}

type remoteErrorResponse struct {
	Message string `json:"message"`
}

func NewRemoteAnalyzerClient(analyzerUrl string, accessToken string) (AnalysisClient, error) {
	if analyzerUrl == "" {
		return nil, errors.New("remote analyzer: url is required")
	}
	parsedUrl, err := url.Parse(analyzerUrl)
	if err != nil {
		return nil, fmt.Errorf("remote analyzer: url is not correct: %w", err)
	}

	cl := http.Client{Timeout: AnalyzerTimeout}
	client := resty.NewWithClient(&cl)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedUrl.Hostname()))

	return &remoteAnalyzerClientImpl{
		analyzerUrl: strings.TrimRight(analyzerUrl, "/"),
		accessToken: accessToken,
		client:      client,
	}, nil
}

type remoteAnalyzerClientImpl struct {
	analyzerUrl string
	accessToken string
	client      *resty.Client
}

func (r remoteAnalyzerClientImpl) Analyze(ctx context.Context, input view.TopologyInput) (*view.AnalysisResult, error) {
	start := time.Now()

	body := RemoteAnalyzeRequest{Kind: input.Kind()}
	if text, ok := input.Text(); ok {
		body.Text = text.Text
	} else if file, ok := input.File(); ok {
		body.FileName = file.Name
		body.MimeType = file.MimeType
		body.Data = file.Data
	} else {
		return nil, fmt.Errorf("topology input is empty")
	}

	req := r.client.R()
	req.SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if r.accessToken != "" {
		req.SetAuthToken(r.accessToken)
	}
	req.SetBody(body)
	req.SetError(&remoteErrorResponse{})

	log.Infof("run topology analysis with remote analyzer %s, input kind: %s", r.analyzerUrl, input.Kind())
	resp, err := req.Post(r.analyzerUrl + "/api/v1/analyze")
	log.Infof("finished topology analysis with remote analyzer, it took %dms", time.Since(start).Milliseconds())
	if err != nil {
		return nil, fmt.Errorf("failed to call remote analyzer: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if errResp, ok := resp.Error().(*remoteErrorResponse); ok && errResp.Message != "" {
			return nil, fmt.Errorf("remote analyzer failed with status %d: %s", resp.StatusCode(), errResp.Message)
		}
		return nil, fmt.Errorf("remote analyzer failed with status %d", resp.StatusCode())
	}

	return decodeAnalysisResult(string(resp.Body()))
}
