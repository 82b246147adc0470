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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Netcracker/qubership-autonet-service/view"
	"github.com/invopop/jsonschema"
)

// AnalysisClient turns a topology description into generated configurations and an assessment.
// Any transport, parsing or upstream problem is reported as an error.
type AnalysisClient interface {
	Analyze(ctx context.Context, input view.TopologyInput) (*view.AnalysisResult, error)
}

// AnalyzerTimeout is the longest a single analysis call may take.
const AnalyzerTimeout = 600 * time.Second

type AnalyzerProvider string

const (
	ProviderOpenAI    AnalyzerProvider = "openai"
	ProviderAnthropic AnalyzerProvider = "anthropic"
	ProviderRemote    AnalyzerProvider = "remote"
)

type AnalyzerConfig struct {
	Provider AnalyzerProvider
	ApiKey   string
	Model    string
	// BaseUrl is the OpenAI proxy, the Anthropic endpoint or the remote analyzer url depending on Provider.
	BaseUrl string
}

func NewAnalysisClient(cfg AnalyzerConfig) (AnalysisClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenaiClient(cfg.ApiKey, cfg.Model, cfg.BaseUrl)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.ApiKey, cfg.Model, cfg.BaseUrl)
	case ProviderRemote:
		return NewRemoteAnalyzerClient(cfg.BaseUrl, cfg.ApiKey)
	default:
		return nil, fmt.Errorf("unsupported analyzer provider: %s (supported: openai, anthropic, remote)", cfg.Provider)
	}
}

const analysisSystemPrompt = `You are AutoNet, a senior network engineer and automation expert.
You receive a description of a network topology: a diagram image, a PDF document or a free text description.
1. Identify every network device (routers, switches, firewalls) and the links between them, including interface names.
2. Generate a complete, production-ready CLI configuration for every device (Cisco IOS syntax unless the description says otherwise):
hostname, interfaces with descriptions, VLANs, trunks, routing, management access and basic hardening.
3. Audit every generated configuration and report validation findings with severity:
"error" for problems that break connectivity or security, "warning" for deviations from best practices, "info" for remarks.
4. Write one Ansible playbook that applies all configurations (use the cisco.ios collection).
5. Write a concise assessment of the topology: design, redundancy, single points of failure and security posture.
6. Give a list of actionable recommendations.
7. Optionally draw a simple SVG sketch of the topology (devices as labelled boxes, links as lines with interface labels).
The SVG must start with <svg and must not contain scripts. Leave topologySketch empty if you can not draw it.
Respond with JSON only, matching the provided schema. Avoid any other output.`

const analysisTextPromptPrefix = "Topology description:\n"
const analysisFilePrompt = "The attached file describes the network topology. Analyze it."

var AnalysisResultResponseSchema = GenerateSchema[view.AnalysisResult]()

func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

var openingFence = regexp.MustCompile("^```[a-zA-Z]*[ \t]*\r?\n")
var closingFence = regexp.MustCompile("\r?\n?```$")

// stripFences removes a markdown code fence such as ```json ... ``` wrapping the whole answer.
// Fences inside the answer are content and stay untouched.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !openingFence.MatchString(text) {
		return text
	}
	text = openingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(closingFence.ReplaceAllString(text, ""))
}

// decodeAnalysisResult parses a model answer into a validated result.
func decodeAnalysisResult(raw string) (*view.AnalysisResult, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("analyzer returned an empty response")
	}
	var result view.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("analyzer returned an unexpected response format: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("analyzer returned an unexpected response format: %w", err)
	}
	result.Normalize()
	return &result, nil
}
