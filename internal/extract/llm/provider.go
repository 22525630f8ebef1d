package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request is one prompt to a text model. JSON asks the provider for a
// JSON-only response where the API supports it.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	JSON        bool
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

var ErrEmptyResponse = errors.New("model returned no text")

// StatusError is a provider failure carrying the HTTP status the API
// answered with. Each provider converts its SDK error into this shape.
type StatusError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
