package backend

import (
	"context"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
)

// LLMClassifier is the classification backend. Label validation and
// padding happen in the categorizer.
type LLMClassifier struct {
	provider   llm.Provider
	categories []string
}

func NewLLMClassifier(p llm.Provider, t config.CategorizerTuning) *LLMClassifier {
	return &LLMClassifier{provider: p, categories: t.Categories}
}

func (c *LLMClassifier) Classify(ctx context.Context, batch []extractionModel.Table) ([]extractionModel.TableCategory, error) {
	raw, err := c.provider.Generate(ctx, llm.Request{
		System:      classifierSystem,
		Prompt:      ClassifierPrompt(batch, c.categories),
		Temperature: config.ClassifierTemperature,
		MaxTokens:   config.ClassifierMaxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}
	payload, err := parsed(extractionModel.Classification, raw)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(classifierSchema, payload, "categories"); err != nil {
		return nil, promotionError(extractionModel.Classification, err)
	}

	items, _ := payload["categories"].([]any)
	out := make([]extractionModel.TableCategory, 0, len(items))
	for _, item := range items {
		label, _ := item.(string)
		out = append(out, extractionModel.TableCategory(label))
	}
	return out, nil
}
