package summarize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfgpt/internal/inference"
	"github.com/dgallion1/pdfgpt/internal/textutil"
)

// fakeSummarizer echoes a fixed reply per call and records inputs.
type fakeSummarizer struct {
	reply  func(i int, text string) (string, error)
	inputs []string
	opts   []inference.SummaryOptions
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, opts inference.SummaryOptions) (string, error) {
	i := len(f.inputs)
	f.inputs = append(f.inputs, text)
	f.opts = append(f.opts, opts)
	return f.reply(i, text)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSummarize_NoChunksMakesNoCall(t *testing.T) {
	fake := &fakeSummarizer{reply: func(int, string) (string, error) { return "x", nil }}
	res, err := New(fake, 5, discard()).Summarize(context.Background(), nil, 500)
	require.NoError(t, err)
	assert.Empty(t, res.Summary)
	assert.Empty(t, fake.inputs)
}

func TestSummarize_OnlyLeadingChunks(t *testing.T) {
	fake := &fakeSummarizer{reply: func(i int, _ string) (string, error) {
		return "part" + string(rune('A'+i)), nil
	}}
	chunks := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"}

	res, err := New(fake, 5, discard()).Summarize(context.Background(), chunks, 500)
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5"}, fake.inputs)
	assert.Equal(t, "partA partB partC partD partE", res.Summary)
	assert.Equal(t, 5, res.Summarized)
	assert.False(t, res.Truncated)
}

func TestChunkOptions(t *testing.T) {
	tests := []struct {
		wordLimit int
		maxChunks int
		wantMax   int
		wantMin   int
	}{
		{500, 5, 100, 20},
		{1000, 5, 200, 20},
		{100, 5, 50, 20},
		{100, 10, 50, 20},
		{1000, 10, 100, 20},
	}
	for _, tt := range tests {
		opts := New(nil, tt.maxChunks, discard()).ChunkOptions(tt.wordLimit)
		assert.Equal(t, tt.wantMax, opts.MaxLength, "limit=%d k=%d", tt.wordLimit, tt.maxChunks)
		assert.Equal(t, tt.wantMin, opts.MinLength)
		assert.LessOrEqual(t, opts.MinLength, opts.MaxLength)
	}
}

func TestSummarize_PassesChunkOptions(t *testing.T) {
	fake := &fakeSummarizer{reply: func(int, string) (string, error) { return "ok", nil }}
	_, err := New(fake, 5, discard()).Summarize(context.Background(), []string{"a", "b"}, 500)
	require.NoError(t, err)
	for _, o := range fake.opts {
		assert.Equal(t, inference.SummaryOptions{MaxLength: 100, MinLength: 20}, o)
	}
}

func TestSummarize_TruncatesToWordLimit(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 80))
	fake := &fakeSummarizer{reply: func(int, string) (string, error) { return long, nil }}

	res, err := New(fake, 5, discard()).Summarize(context.Background(), []string{"a", "b"}, 100)
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	assert.True(t, strings.HasSuffix(res.Summary, TruncationMarker))
	assert.Equal(t, 101, textutil.CountWords(res.Summary))
}

func TestSummarize_RedactsEmails(t *testing.T) {
	fake := &fakeSummarizer{reply: func(int, string) (string, error) {
		return "Contact Alice.Smith@Example.com for details.", nil
	}}
	res, err := New(fake, 5, discard()).Summarize(context.Background(), []string{"a"}, 500)
	require.NoError(t, err)
	assert.Equal(t, "Contact [Email Removed] for details.", res.Summary)
}

func TestSummarize_SkipsFailedChunk(t *testing.T) {
	fake := &fakeSummarizer{reply: func(i int, _ string) (string, error) {
		if i == 1 {
			return "", errors.New("model unavailable")
		}
		return "ok", nil
	}}
	res, err := New(fake, 5, discard()).Summarize(context.Background(), []string{"a", "b", "c"}, 500)
	require.NoError(t, err)

	assert.Equal(t, "ok ok", res.Summary)
	assert.Equal(t, 2, res.Summarized)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Chunk 2")
}

func TestSummarize_AllChunksFailed(t *testing.T) {
	fake := &fakeSummarizer{reply: func(int, string) (string, error) {
		return "", errors.New("model unavailable")
	}}
	_, err := New(fake, 5, discard()).Summarize(context.Background(), []string{"a", "b"}, 500)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllChunksFailed)
	assert.Len(t, fake.inputs, 2)
}

func TestSummarize_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeSummarizer{reply: func(int, string) (string, error) {
		cancel()
		return "", context.Canceled
	}}
	_, err := New(fake, 5, discard()).Summarize(ctx, []string{"a", "b"}, 500)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fake.inputs, 1)
}

func TestSummarize_RedactionKeepsWordLimit(t *testing.T) {
	fake := &fakeSummarizer{reply: func(int, string) (string, error) {
		return "write to a@b.com c@d.org e@f.net now", nil
	}}
	res, err := New(fake, 5, discard()).Summarize(context.Background(), []string{"a"}, 5)
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	assert.NotContains(t, res.Summary, "@")
	kept := strings.TrimSuffix(res.Summary, " "+TruncationMarker)
	assert.LessOrEqual(t, textutil.CountWords(kept), 5)
}
