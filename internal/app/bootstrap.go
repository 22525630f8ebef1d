// Package app wires configuration into a ready extraction service. Both the
// HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/extract"
	"github.com/akolanti/TenderExtract/internal/extract/backend"
	"github.com/akolanti/TenderExtract/internal/extract/docsource"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/akolanti/TenderExtract/internal/extract/llm/providers"
	"github.com/akolanti/TenderExtract/internal/extract/tables"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

const providerNone = "none"

// ProviderFactory builds a named llm client. Tests swap it for a fake.
type ProviderFactory func(ctx context.Context, settings config.Settings, name string) (llm.Provider, error)

// NewExtractService loads tuning and builds the backends named in settings.
// The narrative backend must come up; a table backend that fails to start
// leaves the service text-only and a classifier that fails falls back to
// keyword matching.
func NewExtractService(ctx context.Context, settings config.Settings, newProvider ProviderFactory) (extract.Service, error) {
	logger := logger_i.NewLogger("Bootstrap")
	if newProvider == nil {
		newProvider = providers.New
	}

	tuning, err := config.LoadTuning(settings.TuningFile)
	if err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}

	clients := map[string]llm.Provider{}
	get := func(name string) (llm.Provider, error) {
		if p, ok := clients[name]; ok {
			return p, nil
		}
		p, err := newProvider(ctx, settings, name)
		if err != nil {
			return nil, err
		}
		clients[name] = p
		return p, nil
	}

	narrative, err := get(settings.NarrativeProvider)
	if err != nil {
		return nil, fmt.Errorf("narrative backend %q: %w", settings.NarrativeProvider, err)
	}

	var table llm.Provider
	if settings.TableProvider != "" && settings.TableProvider != providerNone {
		if table, err = get(settings.TableProvider); err != nil {
			logger.Warn("Table backend unavailable, documents run text-only", "provider", settings.TableProvider, "err", err)
			table = nil
		}
	}

	var classifier tables.Classifier
	switch settings.ClassifierProvider {
	case config.ProviderKeyword, providerNone, "":
	default:
		p, err := get(settings.ClassifierProvider)
		if err != nil {
			logger.Warn("Classifier backend unavailable, using keywords", "provider", settings.ClassifierProvider, "err", err)
			break
		}
		classifier = backend.NewLLMClassifier(p, tuning.Categorizer)
	}

	logger.Info("Extraction backends ready",
		"narrative", settings.NarrativeProvider,
		"table", table != nil,
		"classifier", classifier != nil)

	return extract.NewService(extract.Deps{
		Narrative:  narrative,
		Table:      table,
		Classifier: classifier,
		Tuning:     tuning,
		Load:       docsource.Load,
	})
}
