package inference

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
)

// Serialized guards a Backend with a single global lock so model clients
// are never entered concurrently, and records the latency of every call.
// Waiting for the lock respects ctx.
type Serialized struct {
	backend Backend
	sem     *semaphore.Weighted
	stats   *LatencyStats
	log     *slog.Logger
}

func NewSerialized(b Backend, stats *LatencyStats, log *slog.Logger) *Serialized {
	return &Serialized{
		backend: b,
		sem:     semaphore.NewWeighted(1),
		stats:   stats,
		log:     log.With("backend", b.Name()),
	}
}

func (s *Serialized) Name() string { return s.backend.Name() }

func (s *Serialized) Close() {
	// Wait for an in-flight call before releasing the backend.
	if err := s.sem.Acquire(context.Background(), 1); err == nil {
		defer s.sem.Release(1)
	}
	s.backend.Close()
}

func (s *Serialized) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	var out string
	err := s.call(ctx, "summarize", func() error {
		var err error
		out, err = s.backend.Summarize(ctx, text, opts)
		return err
	})
	return out, err
}

func (s *Serialized) Answer(ctx context.Context, question, passage string) (string, error) {
	var out string
	err := s.call(ctx, "answer", func() error {
		var err error
		out, err = s.backend.Answer(ctx, question, passage)
		return err
	})
	return out, err
}

func (s *Serialized) call(ctx context.Context, op string, fn func() error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	if s.stats != nil {
		s.stats.Record(op, elapsed.Milliseconds())
	}
	s.log.Debug("inference call", "op", op, "duration_ms", elapsed.Milliseconds(), "error", err)
	return err
}
