package openaiLLM

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/customHttpClient"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type llmClient struct {
	client    openai.Client
	modelName string
}

// NewOpenAIClient disables SDK retries; the extraction retry policy owns them.
func NewOpenAIClient(apiKey string, modelName string, opts ...option.RequestOption) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is empty")
	}
	if modelName == "" {
		modelName = config.OpenAIModelName
	}
	c := openai.NewClient(append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Client()),
		option.WithMaxRetries(0),
	}, opts...)...)
	return &llmClient{client: c, modelName: modelName}, nil
}

func (c *llmClient) Name() string {
	return config.ProviderOpenAI
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       c.modelName,
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &llm.StatusError{Provider: config.ProviderOpenAI, StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
