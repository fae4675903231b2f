// Package httputil provides shared HTTP helpers for remote API clients:
// retry with exponential backoff and transient-error classification.
package httputil

import (
	"context"
	stderrors "errors"
	"net"
	"time"

	"github.com/dmidlo/gslide2media/pkg/errors"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, rate limits)
// with this type so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps an error as a RetryableError. Returns nil for nil input.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Retry executes fn up to attempts times with exponential backoff.
// It only retries errors classified as transient by [IsRetryable]; other
// errors are returned immediately. The delay doubles after each failed
// attempt. Returns the last error if all attempts fail, or ctx.Err() if
// cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Retry] with the
// pipeline's defaults: 3 attempts with 1 second initial delay (doubling
// each retry).
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// IsRetryable reports whether err should trigger another attempt.
// Explicit [RetryableError] wrapping, the TRANSIENT/TIMEOUT/RATE_LIMITED
// error codes, and network timeouts all qualify.
func IsRetryable(err error) bool {
	if stderrors.As(err, new(*RetryableError)) {
		return true
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeTransient, errors.ErrCodeTimeout, errors.ErrCodeRateLimited:
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
