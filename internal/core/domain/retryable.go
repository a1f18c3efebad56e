package domain

import (
	"context"
	"errors"
)

// permanentError marks a fetch failure that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable. Fetchers use it for failures that another
// attempt cannot fix, such as a rejected filter or a revoked session.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	var p *permanentError
	if errors.As(err, &p) {
		return err
	}
	return &permanentError{err: err}
}

// IsRetryable reports whether a failed fetch should be attempted again.
//
// Permission, validation and not-found failures, open circuit breakers and anything
// marked with Permanent are final. Cancellation of the caller is final as well.
// Everything else, including per-attempt timeouts, is treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var p *permanentError
	if errors.As(err, &p) {
		return false
	}

	switch {
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrCircuitOpen),
		errors.Is(err, ErrTypeMismatch),
		errors.Is(err, context.Canceled):
		return false
	}

	return true
}
