package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Netcracker/qubership-autonet-service/view"
	log "github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"
const anthropicMaxTokens = 16000

func NewAnthropicClient(apiKey string, model string, baseUrl string) (AnalysisClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	opts := []anthropic.Option{anthropic.WithToken(apiKey), anthropic.WithModel(model)}
	if baseUrl != "" {
		opts = append(opts, anthropic.WithBaseURL(baseUrl))
	}
	llm, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("anthropic: failed to create client: %w", err)
	}
	return &langchainClientImpl{llm: llm, name: "anthropic"}, nil
}

// langchainClientImpl works with any langchaingo model that accepts binary parts.
type langchainClientImpl struct {
	llm  llms.Model
	name string
}

func (l langchainClientImpl) Analyze(ctx context.Context, input view.TopologyInput) (*view.AnalysisResult, error) {
	start := time.Now()

	userMessage, err := makeLangchainUserMessage(input)
	if err != nil {
		return nil, err
	}
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, analysisSystemPrompt),
		userMessage,
	}

	log.Infof("run topology analysis with %s client, input kind: %s", l.name, input.Kind())

	resp, err := l.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(anthropicMaxTokens),
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	log.Infof("finished topology analysis with %s client, it took %dms", l.name, time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", l.name)
	}

	return decodeAnalysisResult(resp.Choices[0].Content)
}

func makeLangchainUserMessage(input view.TopologyInput) (llms.MessageContent, error) {
	if text, ok := input.Text(); ok {
		return llms.TextParts(llms.ChatMessageTypeHuman, analysisTextPromptPrefix+text.Text), nil
	}
	file, ok := input.File()
	if !ok {
		return llms.MessageContent{}, fmt.Errorf("topology input is empty")
	}
	return llms.MessageContent{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.BinaryPart(file.MimeType, file.Data),
			llms.TextPart(analysisFilePrompt),
		},
	}, nil
}
