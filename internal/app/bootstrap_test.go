package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{ name string }

func (f fakeProvider) Name() string { return f.name }

func (f fakeProvider) Generate(context.Context, llm.Request) (string, error) { return "{}", nil }

func factory(built *[]string, broken ...string) ProviderFactory {
	return func(_ context.Context, _ config.Settings, name string) (llm.Provider, error) {
		for _, b := range broken {
			if b == name {
				return nil, errors.New("no api key")
			}
		}
		*built = append(*built, name)
		return fakeProvider{name: name}, nil
	}
}

func TestNewExtractServiceReusesClients(t *testing.T) {
	var built []string
	s, err := NewExtractService(context.Background(), config.Settings{
		NarrativeProvider:  config.ProviderAnthropic,
		TableProvider:      config.ProviderGemini,
		ClassifierProvider: config.ProviderAnthropic,
	}, factory(&built))

	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, []string{config.ProviderAnthropic, config.ProviderGemini}, built)
}

func TestNewExtractServiceDegradesOptionalBackends(t *testing.T) {
	var built []string
	s, err := NewExtractService(context.Background(), config.Settings{
		NarrativeProvider:  config.ProviderOpenAI,
		TableProvider:      config.ProviderGemini,
		ClassifierProvider: config.ProviderAnthropic,
	}, factory(&built, config.ProviderGemini, config.ProviderAnthropic))

	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, []string{config.ProviderOpenAI}, built)
}

func TestNewExtractServiceNeedsNarrative(t *testing.T) {
	var built []string
	_, err := NewExtractService(context.Background(), config.Settings{
		NarrativeProvider: config.ProviderGemini,
	}, factory(&built, config.ProviderGemini))
	assert.Error(t, err)
}

func TestNewExtractServiceBadTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retry: [not, a, map"), 0o600))

	var built []string
	_, err := NewExtractService(context.Background(), config.Settings{
		NarrativeProvider: config.ProviderGemini,
		TuningFile:        path,
	}, factory(&built))
	assert.Error(t, err)
}
