// Package inference defines the model collaborators of the pipeline and
// their backends. Every backend is a black box mapping text to text.
package inference

import (
	"context"
	"fmt"
)

// SummaryOptions bounds the length of one generated summary.
type SummaryOptions struct {
	MaxLength int
	MinLength int
}

// Summarizer condenses one chunk of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error)
}

// QuestionAnswerer extracts an answer to question from passage.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, passage string) (string, error)
}

// Backend is a loaded model pair with an explicit lifecycle.
type Backend interface {
	Summarizer
	QuestionAnswerer
	Name() string
	Close()
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
