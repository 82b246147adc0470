package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Netcracker/qubership-autonet-service/view"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	log "github.com/sirupsen/logrus"
)

func NewOpenaiClient(apiKey string, model string, proxy string, extraOpts ...option.RequestOption) (AnalysisClient, error) {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		return nil, errors.New("openai: api key is required")
	}

	if proxy != "" {
		opts = append(opts, option.WithBaseURL(proxy))
	}

	var openAIModel openai.ChatModel
	if model != "" {
		openAIModel = model
	} else {
		openAIModel = openai.ChatModelGPT5
	}

	tr := http.Transport{
		TLSHandshakeTimeout:   time.Second * 30,
		IdleConnTimeout:       time.Second * 600,
		ResponseHeaderTimeout: AnalyzerTimeout,
	}
	cl := http.Client{Transport: &tr, Timeout: AnalyzerTimeout}

	opts = append(opts, option.WithHTTPClient(&cl))
	opts = append(opts, extraOpts...)

	return &openaiClientImpl{
		client: openai.NewClient(opts...),
		model:  openAIModel,
	}, nil
}

type openaiClientImpl struct {
	client openai.Client
	model  openai.ChatModel
}

func (o openaiClientImpl) Analyze(ctx context.Context, input view.TopologyInput) (*view.AnalysisResult, error) {
	start := time.Now()

	userMessage, err := makeOpenaiUserMessage(input)
	if err != nil {
		return nil, err
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(analysisSystemPrompt),
		userMessage,
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   "topology_analysis_result",
		Schema: AnalysisResultResponseSchema,
		Strict: openai.Bool(true),
	}

	log.Infof("run topology analysis with openai client, input kind: %s", input.Kind())

	chat, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Model: o.model,
	})
	log.Infof("finished topology analysis with openai client, it took %dms", time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	if refusal := chat.Choices[0].Message.Refusal; refusal != "" {
		return nil, fmt.Errorf("openai refused to analyze the topology: %s", refusal)
	}

	return decodeAnalysisResult(chat.Choices[0].Message.Content)
}

func makeOpenaiUserMessage(input view.TopologyInput) (openai.ChatCompletionMessageParamUnion, error) {
	if text, ok := input.Text(); ok {
		return openai.UserMessage(analysisTextPromptPrefix + text.Text), nil
	}
	file, ok := input.File()
	if !ok {
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("topology input is empty")
	}

	dataUrl := fmt.Sprintf("data:%s;base64,%s", file.MimeType, base64.StdEncoding.EncodeToString(file.Data))

	var filePart openai.ChatCompletionContentPartUnionParam
	if file.MimeType == "application/pdf" {
		filePart = openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String(dataUrl),
			Filename: openai.String(file.Name),
		})
	} else {
		filePart = openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataUrl,
		})
	}

	return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(analysisFilePrompt),
		filePart,
	}), nil
}
