package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/akolanti/TenderExtract/internal/extract/retry"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusOverloaded is Anthropic's "overloaded" answer.
const statusOverloaded = 529

// Classify sorts a backend failure into retryable or terminal. Unknown
// errors are retried, bounded by the policy's attempt limit.
func Classify(err error) retry.Class {
	if err == nil {
		return retry.Retryable
	}

	var terminal *TerminalBackendError
	if errors.As(err, &terminal) {
		return retry.Terminal
	}
	var retryable *RetryableBackendError
	if errors.As(err, &retryable) {
		return retry.Retryable
	}

	if errors.Is(err, context.Canceled) {
		return retry.Terminal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.Retryable
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode)
	}

	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return classifyCode(s.Code())
	}

	// network failures, empty answers and "overloaded" bodies end up here
	return retry.Retryable
}

func classifyStatus(code int) retry.Class {
	switch {
	case code == http.StatusTooManyRequests,
		code == http.StatusRequestTimeout,
		code == statusOverloaded,
		code >= 500:
		return retry.Retryable
	case code >= 400:
		return retry.Terminal
	}
	return retry.Retryable
}

func classifyCode(code codes.Code) retry.Class {
	switch code {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied,
		codes.NotFound, codes.FailedPrecondition, codes.Unimplemented, codes.Canceled:
		return retry.Terminal
	}
	return retry.Retryable
}
