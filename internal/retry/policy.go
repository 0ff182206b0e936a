// Package retry wraps cenkalti/backoff into a small policy value that call
// sites configure with an attempt budget, a delay schedule and a predicate
// deciding which errors are worth another attempt.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy retries an operation MaxRetries extra times after the first attempt.
// Delays grow as Base, 2*Base, 4*Base... with no jitter.
type Policy struct {
	MaxRetries int
	Base       time.Duration
	// Retryable decides whether err deserves another attempt. Nil retries everything.
	Retryable func(err error) bool
	// OnRetry is called before each wait with the 1-based number of the failed attempt.
	OnRetry func(attempt int, err error, delay time.Duration)

	timer backoff.Timer
}

func Exponential(maxRetries int, base time.Duration) Policy {
	return Policy{MaxRetries: maxRetries, Base: base}
}

// WithTimer replaces the wall-clock timer used between attempts.
func (p Policy) WithTimer(t backoff.Timer) Policy {
	p.timer = t
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Base
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.Base << uint(p.MaxRetries)
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

// Do runs op until it succeeds, returns a non-retryable error, or the budget is spent.
// The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
	}
	return backoff.RetryNotifyWithTimer(operation, p.backOff(ctx), notify, p.timer)
}

// Run is Do for operations that produce a value.
func Run[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}
