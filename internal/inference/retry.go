package inference

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// MaxRetries is the number of attempts made for one inference call.
const MaxRetries = 3

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Retrying wraps a Backend and retries retryable failures with backoff.
// Non-retryable errors are returned immediately.
type Retrying struct {
	Backend
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewRetrying(b Backend, log *slog.Logger) *Retrying {
	return &Retrying{Backend: b, log: log, backoff: Backoff}
}

func (r *Retrying) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	var out string
	err := r.do(ctx, "summarize", func(ctx context.Context) error {
		var err error
		out, err = r.Backend.Summarize(ctx, text, opts)
		return err
	})
	return out, err
}

func (r *Retrying) Answer(ctx context.Context, question, passage string) (string, error) {
	var out string
	err := r.do(ctx, "answer", func(ctx context.Context) error {
		var err error
		out, err = r.Backend.Answer(ctx, question, passage)
		return err
	})
	return out, err
}

func (r *Retrying) do(ctx context.Context, op string, call func(context.Context) error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = call(ctx)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		r.log.Warn("retryable inference error", "op", op, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
