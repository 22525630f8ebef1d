package backend

import (
	"errors"
	"fmt"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

var (
	ErrUnparseable    = errors.New("response is not a JSON object")
	ErrMissingPayload = errors.New("response carries none of the expected keys")
	ErrPayloadShape   = errors.New("response does not match the payload schema")
)

// RetryableBackendError marks a failure worth another attempt.
type RetryableBackendError struct {
	Backend extractionModel.BackendKind
	Reason  string
	Err     error
}

func (e *RetryableBackendError) Error() string {
	return fmt.Sprintf("%s backend: retryable %s: %v", e.Backend, e.Reason, e.Err)
}

func (e *RetryableBackendError) Unwrap() error { return e.Err }

// TerminalBackendError marks a failure that no retry will fix.
type TerminalBackendError struct {
	Backend extractionModel.BackendKind
	Reason  string
	Err     error
}

func (e *TerminalBackendError) Error() string {
	return fmt.Sprintf("%s backend: terminal %s: %v", e.Backend, e.Reason, e.Err)
}

func (e *TerminalBackendError) Unwrap() error { return e.Err }
