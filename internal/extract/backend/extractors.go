package backend

import (
	"context"
	"errors"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
)

// Extractor is a single call to one backend for one chunk. It does not
// retry; the Adapter does.
type Extractor interface {
	Kind() extractionModel.BackendKind
	Extract(ctx context.Context, chunk commonModels.Chunk) (extractionModel.PartialResult, error)
}

type NarrativeExtractor struct {
	provider          llm.Provider
	documentName      string
	defaultConfidence float64
}

func NewNarrativeExtractor(p llm.Provider, t config.BackendTuning) *NarrativeExtractor {
	return &NarrativeExtractor{provider: p, defaultConfidence: t.DefaultConfidence}
}

// ForDocument returns a copy that names the document in its prompts.
func (e *NarrativeExtractor) ForDocument(name string) *NarrativeExtractor {
	c := *e
	c.documentName = name
	return &c
}

func (e *NarrativeExtractor) Kind() extractionModel.BackendKind {
	return extractionModel.Narrative
}

func (e *NarrativeExtractor) Extract(ctx context.Context, chunk commonModels.Chunk) (extractionModel.PartialResult, error) {
	raw, err := e.provider.Generate(ctx, llm.Request{
		System:      narrativeSystem,
		Prompt:      NarrativePrompt(chunk, e.documentName),
		Temperature: config.NarrativeTemperature,
		MaxTokens:   config.NarrativeMaxTokens,
		JSON:        true,
	})
	if err != nil {
		return extractionModel.PartialResult{}, err
	}
	payload, err := parsed(e.Kind(), raw)
	if err != nil {
		return extractionModel.PartialResult{}, err
	}
	result, err := promoteNarrative(payload, chunk.Index, e.defaultConfidence)
	if err != nil {
		return extractionModel.PartialResult{}, promotionError(e.Kind(), err)
	}
	return result, nil
}

type TableExtractor struct {
	provider          llm.Provider
	defaultConfidence float64
	asciiConfidence   float64
}

func NewTableExtractor(p llm.Provider, t config.BackendTuning, asciiConfidence float64) *TableExtractor {
	return &TableExtractor{provider: p, defaultConfidence: t.DefaultConfidence, asciiConfidence: asciiConfidence}
}

func (e *TableExtractor) Kind() extractionModel.BackendKind {
	return extractionModel.Tabular
}

func (e *TableExtractor) Extract(ctx context.Context, chunk commonModels.Chunk) (extractionModel.PartialResult, error) {
	raw, err := e.provider.Generate(ctx, llm.Request{
		System:      tableSystem,
		Prompt:      TablePrompt(chunk, detector.Sections(chunk.Text)),
		Temperature: config.TableTemperature,
		MaxTokens:   config.TableMaxTokens,
		JSON:        true,
	})
	if err != nil {
		return extractionModel.PartialResult{}, err
	}
	payload, err := parsed(e.Kind(), raw)
	if err != nil {
		return extractionModel.PartialResult{}, err
	}
	result, err := promoteTables(payload, chunk.Index, e.defaultConfidence, e.asciiConfidence)
	if err != nil {
		return extractionModel.PartialResult{}, promotionError(e.Kind(), err)
	}
	return result, nil
}

// parsed runs Parse and reports a failure as retryable: the model may well
// answer cleanly on the next call.
func parsed(kind extractionModel.BackendKind, raw string) (map[string]any, error) {
	switch out := Parse(raw).(type) {
	case ParseSuccess:
		return out.Payload, nil
	case ParseFailure:
		return nil, &RetryableBackendError{Backend: kind, Reason: "parse: " + out.Reason, Err: ErrUnparseable}
	}
	return nil, &RetryableBackendError{Backend: kind, Reason: "parse", Err: ErrUnparseable}
}

func promotionError(kind extractionModel.BackendKind, err error) error {
	if errors.Is(err, ErrMissingPayload) {
		return &TerminalBackendError{Backend: kind, Reason: "schema", Err: err}
	}
	return &RetryableBackendError{Backend: kind, Reason: "schema", Err: err}
}
