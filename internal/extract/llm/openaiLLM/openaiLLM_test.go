package openaiLLM

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) llm.Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := NewOpenAIClient("test-key", "gpt-test", option.WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	return p
}

func TestGenerateReturnsFirstChoice(t *testing.T) {
	var body map[string]any
	p := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"kisi_sayisi\":250}"}}]}`))
	})

	out, err := p.Generate(context.Background(), llm.Request{System: "sys", Prompt: "metin", JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"kisi_sayisi":250}`, out)
	assert.Equal(t, "gpt-test", body["model"])
	assert.Len(t, body["messages"], 2)
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
}

func TestGenerateMapsStatusErrors(t *testing.T) {
	calls := 0
	p := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})

	_, err := p.Generate(context.Background(), llm.Request{Prompt: "x"})

	var statusErr *llm.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, 1, calls, "sdk retries are disabled")
}

func TestGenerateEmptyChoice(t *testing.T) {
	p := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test","choices":[]}`))
	})
	_, err := p.Generate(context.Background(), llm.Request{Prompt: "x"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestNewOpenAIClientNeedsKey(t *testing.T) {
	_, err := NewOpenAIClient("", "")
	assert.Error(t, err)
}
