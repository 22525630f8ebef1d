package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")
var errFatal = errors.New("fatal")

func classify(err error) Class {
	if errors.Is(err, errFatal) {
		return Terminal
	}
	return Retryable
}

type recorder struct {
	waits []time.Duration
}

func (r *recorder) wait(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func testPolicy(r *recorder) Policy {
	p := FromTuning(config.DefaultTuning().Retry)
	p.Wait = r.wait
	return p
}

func TestDoStopsAfterMaxAttempts(t *testing.T) {
	rec := &recorder{}
	calls := 0
	_, attempts, err := Do(context.Background(), testPolicy(rec), classify, func(context.Context, int) (string, error) {
		calls++
		return "", errFlaky
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
	assert.Len(t, attempts, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.waits)
}

func TestDoSucceedsOnRetry(t *testing.T) {
	rec := &recorder{}
	got, attempts, err := Do(context.Background(), testPolicy(rec), classify, func(_ context.Context, n int) (int, error) {
		if n < 2 {
			return 0, errFlaky
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	require.Len(t, attempts, 2)
	assert.Equal(t, Retryable, attempts[0].Class)
	assert.NoError(t, attempts[1].Err)
	assert.Len(t, rec.waits, 1)
}

func TestDoTerminalErrorIsNotRetried(t *testing.T) {
	rec := &recorder{}
	calls := 0
	_, attempts, err := Do(context.Background(), testPolicy(rec), classify, func(context.Context, int) (int, error) {
		calls++
		return 0, errFatal
	})

	assert.ErrorIs(t, err, errFatal)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Terminal, attempts[0].Class)
	assert.Empty(t, rec.waits)
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, attempts, err := Do(ctx, Policy{MaxAttempts: 3, Wait: NoWait}, classify, func(context.Context, int) (int, error) {
		calls++
		return 0, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
	assert.Empty(t, attempts)
}

func TestBackoffIsMonotonicAndCapped(t *testing.T) {
	p := Policy{Initial: time.Second, Multiplier: 2, Max: 8 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
	for i, w := range want {
		assert.Equal(t, w, p.Backoff(i+1), "attempt %d", i+1)
	}
	assert.Zero(t, p.Backoff(0))
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
