package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/customHttpClient"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewGeminiClient builds a Gemini provider on the shared pooled transport.
// httpOptions, when given, replaces the SDK's endpoint settings.
func NewGeminiClient(ctx context.Context, apiKey string, modelName string, httpOptions ...genai.HTTPOptions) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	if modelName == "" {
		modelName = config.GeminiModelName
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.Client(),
	}
	if len(httpOptions) > 0 {
		cc.HTTPOptions = httpOptions[0]
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Name() string {
	return config.ProviderGemini
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		contentConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		contentConfig.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(req.Prompt), contentConfig)
	if err != nil {
		return "", toStatusError(err)
	}
	if result == nil {
		return "", llm.ErrEmptyResponse
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		c.logger.WithTrace(ctx).Warn("Gemini returned no text", "model", c.modelName)
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func toStatusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.StatusError{Provider: config.ProviderGemini, StatusCode: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &llm.StatusError{Provider: config.ProviderGemini, StatusCode: apiErrPtr.Code, Err: err}
	}
	return err
}
