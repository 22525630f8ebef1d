package backend

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/retry"
	"github.com/akolanti/TenderExtract/internal/metrics"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"golang.org/x/time/rate"
)

// Outcome is what one chunk produced on one backend: a result that is
// empty when every attempt failed, and the attempt log.
type Outcome struct {
	Result   extractionModel.PartialResult
	Attempts []extractionModel.ExtractionAttempt
	Err      error
}

// Adapter wraps an Extractor with rate limiting, a per-call timeout and
// the retry policy. Attempt never fails; failures degrade to an empty
// result.
type Adapter struct {
	extractor   Extractor
	policy      retry.Policy
	limiter     *rate.Limiter
	callTimeout time.Duration
	batchSize   int
	cooldown    time.Duration
	logger      *logger_i.Logger
}

type AdapterOption func(*Adapter)

// WithWait replaces the backoff and cooldown sleep.
func WithWait(wait retry.WaitFunc) AdapterOption {
	return func(a *Adapter) { a.policy.Wait = wait }
}

func WithLimiter(l *rate.Limiter) AdapterOption {
	return func(a *Adapter) { a.limiter = l }
}

func NewAdapter(e Extractor, bt config.BackendTuning, rt config.RetryTuning, opts ...AdapterOption) *Adapter {
	limit := rate.Inf
	if bt.RatePerSecond > 0 {
		limit = rate.Limit(bt.RatePerSecond)
	}
	a := &Adapter{
		extractor:   e,
		policy:      retry.FromTuning(rt),
		limiter:     rate.NewLimiter(limit, max(bt.Burst, 1)),
		callTimeout: rt.CallTimeout,
		batchSize:   max(bt.BatchSize, 1),
		cooldown:    bt.Cooldown,
		logger:      logger_i.NewLogger("Backend Adapter :").With("backend", string(e.Kind())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Kind() extractionModel.BackendKind { return a.extractor.Kind() }
func (a *Adapter) BatchSize() int                    { return a.batchSize }
func (a *Adapter) Cooldown() time.Duration           { return a.cooldown }

// Wait sleeps through a cooldown with the adapter's wait function.
func (a *Adapter) Wait(ctx context.Context, d time.Duration) error {
	return a.policy.Wait(ctx, d)
}

func (a *Adapter) Attempt(ctx context.Context, chunk commonModels.Chunk) Outcome {
	kind := a.Kind()
	log := a.logger.WithTrace(ctx).With("chunk", chunk.Index)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("backend_"+string(kind), time.Since(start)) }()

	result, attempts, err := retry.Do(ctx, a.policy, Classify, func(ctx context.Context, n int) (extractionModel.PartialResult, error) {
		return a.call(ctx, chunk, n, log)
	})

	out := Outcome{Attempts: a.record(chunk.Index, attempts, err)}
	if err != nil {
		out.Err = err
		out.Result = extractionModel.EmptyResult(chunk.Index, kind)
		metrics.CountEmptyResult(string(kind))
		if errors.Is(err, retry.ErrExhausted) {
			log.Error("extract.chunk.exhausted", "attempts", len(attempts), "error", err)
		} else {
			log.Error("extract.chunk.terminal", "attempts", len(attempts), "error", err)
		}
		return out
	}

	result.ChunkIndex = chunk.Index
	result.Backend = kind
	result.Confidence = extractionModel.ClampConfidence(result.Confidence)
	out.Result = result
	log.Debug("extract.chunk.done", "attempts", len(attempts), "confidence", result.Confidence, "tables", len(result.Tables))
	return out
}

func (a *Adapter) call(ctx context.Context, chunk commonModels.Chunk, n int, log *logger_i.Logger) (extractionModel.PartialResult, error) {
	kind := a.Kind()
	if err := a.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return extractionModel.PartialResult{}, ctx.Err()
		}
		return extractionModel.PartialResult{}, &RetryableBackendError{Backend: kind, Reason: "rate limit", Err: err}
	}

	callCtx := ctx
	if a.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}

	result, err := a.extractor.Extract(callCtx, chunk)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = &RetryableBackendError{Backend: kind, Reason: "call timeout", Err: err}
		}
		if Classify(err) == retry.Retryable {
			log.Warn("extract.chunk.retry", "attempt", n, "error", err)
		}
		return extractionModel.PartialResult{}, err
	}
	return result, nil
}

func (a *Adapter) record(chunkIndex int, attempts []retry.Attempt, final error) []extractionModel.ExtractionAttempt {
	kind := a.Kind()
	out := make([]extractionModel.ExtractionAttempt, len(attempts))
	for i, at := range attempts {
		outcome := extractionModel.OutcomeSuccess
		if at.Err != nil {
			outcome = extractionModel.AttemptOutcome(at.Class.String())
		}
		if i == len(attempts)-1 && errors.Is(final, retry.ErrExhausted) {
			outcome = extractionModel.OutcomeExhausted
		}
		out[i] = extractionModel.ExtractionAttempt{
			ChunkIndex:    chunkIndex,
			Backend:       kind,
			AttemptNumber: at.Number,
			StartedAt:     at.StartedAt,
			Duration:      at.Duration,
			Outcome:       outcome,
		}
		if at.Err != nil {
			out[i].Error = at.Err.Error()
		}
		metrics.CountAttempt(string(kind), string(outcome))
	}
	return out
}
