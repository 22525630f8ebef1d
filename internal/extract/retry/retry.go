// Package retry runs a fallible operation under a bounded exponential
// backoff policy. It is shared by the extraction adapter and the table
// categorizer.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
)

type Class int

const (
	Retryable Class = iota
	Terminal
)

func (c Class) String() string {
	if c == Terminal {
		return "terminal"
	}
	return "retryable"
}

// Classifier decides whether a failed attempt may be repeated.
type Classifier func(error) Class

// WaitFunc blocks for d or until ctx ends.
type WaitFunc func(ctx context.Context, d time.Duration) error

type Policy struct {
	MaxAttempts int
	Initial     time.Duration
	Multiplier  float64
	Max         time.Duration
	Wait        WaitFunc
}

// Attempt records one call made under a policy.
type Attempt struct {
	Number    int
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Class     Class
}

var ErrExhausted = errors.New("retry attempts exhausted")

func FromTuning(t config.RetryTuning) Policy {
	return Policy{
		MaxAttempts: t.MaxAttempts,
		Initial:     t.InitialBackoff,
		Multiplier:  t.Multiplier,
		Max:         t.MaxBackoff,
		Wait:        Sleep,
	}
}

// Backoff is the delay after the given failed attempt (1-based). It never
// shrinks between attempts and is capped at Max.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.Initial)
	for i := 1; i < attempt; i++ {
		d *= mult
		if p.Max > 0 && d >= float64(p.Max) {
			return p.Max
		}
	}
	if p.Max > 0 && time.Duration(d) > p.Max {
		return p.Max
	}
	return time.Duration(d)
}

// Do calls op until it succeeds, fails terminally or the policy runs out of
// attempts. Every call is returned in the attempt log. A cancelled ctx stops
// the loop without a further call.
func Do[T any](ctx context.Context, p Policy, classify Classifier, op func(ctx context.Context, attempt int) (T, error)) (T, []Attempt, error) {
	var zero T
	maxAttempts := max(p.MaxAttempts, 1)
	wait := p.Wait
	if wait == nil {
		wait = Sleep
	}
	attempts := make([]Attempt, 0, maxAttempts)

	for n := 1; n <= maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return zero, attempts, err
		}
		started := time.Now()
		value, err := op(ctx, n)
		a := Attempt{Number: n, StartedAt: started, Duration: time.Since(started), Err: err}
		if err == nil {
			attempts = append(attempts, a)
			return value, attempts, nil
		}

		a.Class = classify(err)
		attempts = append(attempts, a)
		if a.Class == Terminal {
			return zero, attempts, err
		}
		if n == maxAttempts {
			return zero, attempts, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, n, err)
		}
		if werr := wait(ctx, p.Backoff(n)); werr != nil {
			return zero, attempts, werr
		}
	}
	return zero, attempts, ErrExhausted
}

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoWait skips backoff entirely. Tests use it.
func NoWait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
