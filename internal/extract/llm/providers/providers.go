// Package providers maps a configured provider name onto a concrete client.
package providers

import (
	"context"
	"fmt"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/akolanti/TenderExtract/internal/extract/llm/claude"
	"github.com/akolanti/TenderExtract/internal/extract/llm/gemini"
	"github.com/akolanti/TenderExtract/internal/extract/llm/openaiLLM"
)

func New(ctx context.Context, settings config.Settings, name string) (llm.Provider, error) {
	switch name {
	case config.ProviderGemini:
		return gemini.NewGeminiClient(ctx, settings.GeminiAPIKey, settings.GeminiModel)
	case config.ProviderOpenAI:
		return openaiLLM.NewOpenAIClient(settings.OpenAIAPIKey, settings.OpenAIModel)
	case config.ProviderAnthropic:
		return claude.NewClaudeClient(settings.AnthropicAPIKey, settings.AnthropicModel)
	}
	return nil, fmt.Errorf("unknown llm provider %q", name)
}
