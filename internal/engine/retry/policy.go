// Package retry runs fetches with exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/cenkalti/backoff/v5"
	"go.trai.ch/zerr"
)

// NotifyFunc is called before waiting for a retry. attempt is the number of the
// attempt that just failed, starting at 1.
type NotifyFunc func(attempt int, err error, delay time.Duration)

// Policy retries an operation up to MaxRetries additional times, waiting
// BaseDelay * Multiplier^n between attempts.
type Policy struct {
	opts      domain.RetryOptions
	notify    NotifyFunc
	retryable func(error) bool
}

// Option configures a Policy.
type Option func(*Policy)

// WithNotify sets the hook called before every retry.
func WithNotify(fn NotifyFunc) Option {
	return func(p *Policy) {
		p.notify = fn
	}
}

// WithClassifier replaces domain.IsRetryable as the retry decision.
func WithClassifier(fn func(error) bool) Option {
	return func(p *Policy) {
		p.retryable = fn
	}
}

// New creates a Policy. Invalid options are normalised rather than rejected:
// negative counts and delays become zero and a multiplier below 1 becomes 1.
func New(opts domain.RetryOptions, options ...Option) *Policy {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay < 0 {
		opts.BaseDelay = 0
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = 1
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = time.Duration(math.MaxInt64)
	}
	if opts.BaseDelay > opts.MaxDelay {
		opts.BaseDelay = opts.MaxDelay
	}

	p := &Policy{opts: opts, retryable: domain.IsRetryable}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Options returns the normalised options of the policy.
func (p *Policy) Options() domain.RetryOptions {
	return p.opts
}

// Do runs fn until it succeeds, fails with a non-retryable error, exhausts its
// retries or ctx is done. No attempt starts and no delay elapses after ctx is done.
func (p *Policy) Do(ctx context.Context, fn domain.Fetcher) (any, error) {
	return Do(ctx, p, fn)
}

// Do is the typed form of Policy.Do.
func Do[T any](ctx context.Context, p *Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	attempt := 0
	op := func() (T, error) {
		attempt++
		v, err := runAttempt(ctx, p.opts.AttemptTimeout, fn)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !p.retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.opts.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          p.opts.Multiplier,
		MaxInterval:         p.opts.MaxDelay,
	}

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.opts.MaxRetries) + 1), //nolint:gosec // MaxRetries is normalised to >= 0
		backoff.WithMaxElapsedTime(0),
	}
	if p.notify != nil {
		retryOpts = append(retryOpts, backoff.WithNotify(func(err error, next time.Duration) {
			p.notify(attempt, err, next)
		}))
	}

	v, err := backoff.Retry(ctx, op, retryOpts...)
	if err != nil {
		// The final attempt returns its error without unwrapping the permanent marker.
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		return zero, err
	}
	return v, nil
}

type result[T any] struct {
	v   T
	err error
}

// runAttempt bounds a single attempt by timeout. The attempt is abandoned when the
// deadline passes even if fn ignores its context.
func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		v, err := fn(attemptCtx)
		done <- result[T]{v: v, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return zero, timeoutError(timeout)
		}
		return r.v, r.err
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, timeoutError(timeout)
	}
}

func timeoutError(timeout time.Duration) error {
	return zerr.With(zerr.Wrap(domain.ErrFetchTimeout, "attempt exceeded its deadline"), "timeout", timeout.String())
}
