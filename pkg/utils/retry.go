package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions contains configuration for retry behavior.
type RetryOptions struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// GetReadRetryOptions returns retry options for idempotent admin API reads.
// Zero retries runs the operation exactly once.
func GetReadRetryOptions(retries uint64) RetryOptions {
	return RetryOptions{
		MaxElapsedTime:  5 * time.Second,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxRetries:      retries,
	}
}

// WithRetry executes operation with exponential backoff. Errors for which
// retryable returns false stop immediately and are returned unchanged.
func WithRetry[T any](
	ctx context.Context, operation func() (T, error), retryable func(error) bool, opts RetryOptions,
) (T, error) {
	var result T

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
		backoff.WithInitialInterval(opts.InitialInterval),
		backoff.WithMaxInterval(opts.MaxInterval),
	), opts.MaxRetries)

	err := backoff.Retry(func() error {
		var err error

		result, err = operation()
		if err != nil && retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(b, ctx))

	return result, err
}
