// Package summarize condenses the leading chunks of a document into one
// word-limited summary.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/pdfgpt/internal/inference"
	"github.com/dgallion1/pdfgpt/internal/redact"
	"github.com/dgallion1/pdfgpt/internal/textutil"
)

const (
	// DefaultMaxChunks is how many leading chunks are summarized.
	DefaultMaxChunks = 5

	minChunkMaxLength = 50
	chunkMinLength    = 20

	// TruncationMarker follows a summary cut at the word limit.
	TruncationMarker = "..."
)

// ErrAllChunksFailed is returned when no chunk could be summarized.
var ErrAllChunksFailed = errors.New("summarization failed for every chunk")

// Result is the final summary with per-chunk diagnostics.
type Result struct {
	Summary    string
	Truncated  bool
	Summarized int
	Warnings   []string
}

// Aggregator summarizes chunks independently and stitches the fragments.
type Aggregator struct {
	model     inference.Summarizer
	maxChunks int
	log       *slog.Logger
}

func New(model inference.Summarizer, maxChunks int, log *slog.Logger) *Aggregator {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	return &Aggregator{model: model, maxChunks: maxChunks, log: log}
}

// ChunkOptions returns the per-chunk length bounds for a summary word limit.
func (a *Aggregator) ChunkOptions(wordLimit int) inference.SummaryOptions {
	maxLen := wordLimit / a.maxChunks
	if maxLen < minChunkMaxLength {
		maxLen = minChunkMaxLength
	}
	minLen := chunkMinLength
	if minLen > maxLen {
		minLen = maxLen
	}
	return inference.SummaryOptions{MaxLength: maxLen, MinLength: minLen}
}

// Summarize runs the model over at most maxChunks leading chunks in order.
// A chunk that fails is skipped with a warning; the call fails only when
// every attempted chunk failed. The joined summary is cut to wordLimit words
// and email addresses are redacted.
func (a *Aggregator) Summarize(ctx context.Context, chunks []string, wordLimit int) (*Result, error) {
	res := &Result{}
	if len(chunks) == 0 {
		return res, nil
	}
	if len(chunks) > a.maxChunks {
		chunks = chunks[:a.maxChunks]
	}

	opts := a.ChunkOptions(wordLimit)
	fragments := make([]string, 0, len(chunks))
	var lastErr error
	for i, chunk := range chunks {
		frag, err := a.model.Summarize(ctx, chunk, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			a.log.Warn("chunk summary failed", "chunk", i, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("Chunk %d could not be summarized and was skipped.", i+1))
			continue
		}
		res.Summarized++
		fragments = append(fragments, frag)
	}
	if res.Summarized == 0 {
		return nil, fmt.Errorf("%w: %w", ErrAllChunksFailed, lastErr)
	}

	summary := strings.TrimSpace(strings.Join(fragments, " "))
	res.Summary, res.Truncated = redact.TruncateWords(summary, wordLimit, TruncationMarker)

	a.log.Debug("summary built",
		"chunks", len(chunks),
		"summarized", res.Summarized,
		"words", textutil.CountWords(res.Summary),
		"truncated", res.Truncated,
	)
	return res, nil
}
