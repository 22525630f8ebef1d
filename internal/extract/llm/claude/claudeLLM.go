package claude

import (
	"context"
	"errors"
	"strings"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/customHttpClient"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

type llmClient struct {
	client    anthropic.Client
	modelName string
}

func NewClaudeClient(apiKey string, modelName string, opts ...option.RequestOption) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is empty")
	}
	if modelName == "" {
		modelName = config.AnthropicModelName
	}
	c := anthropic.NewClient(append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Client()),
		option.WithMaxRetries(0),
	}, opts...)...)
	return &llmClient{client: c, modelName: modelName}, nil
}

func (c *llmClient) Name() string {
	return config.ProviderAnthropic
}

// Generate ignores req.JSON; Claude has no JSON mode and the prompts
// ask for JSON explicitly.
func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.modelName),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &llm.StatusError{Provider: config.ProviderAnthropic, StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", llm.ErrEmptyResponse
	}
	return b.String(), nil
}
