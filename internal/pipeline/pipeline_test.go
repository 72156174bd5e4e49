package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfgpt/internal/answer"
	"github.com/dgallion1/pdfgpt/internal/config"
	"github.com/dgallion1/pdfgpt/internal/inference"
	"github.com/dgallion1/pdfgpt/internal/textutil"
)

// fakeBackend is a deterministic model pair that counts calls.
type fakeBackend struct {
	mu             sync.Mutex
	summarizeCalls int
	answerCalls    int
	passage        string
	summarize      func(text string) (string, error)
	answer         func(question, passage string) (string, error)
}

func (f *fakeBackend) Name() string { return "fake" }
func (f *fakeBackend) Close()       {}

func (f *fakeBackend) Summarize(_ context.Context, text string, _ inference.SummaryOptions) (string, error) {
	f.mu.Lock()
	f.summarizeCalls++
	f.mu.Unlock()
	return f.summarize(text)
}

func (f *fakeBackend) Answer(_ context.Context, question, passage string) (string, error) {
	f.mu.Lock()
	f.answerCalls++
	f.passage = passage
	f.mu.Unlock()
	return f.answer(question, passage)
}

// firstWords summarizes a chunk as its first n words.
func firstWords(n int) func(string) (string, error) {
	return func(text string) (string, error) {
		words := strings.Fields(text)
		if len(words) > n {
			words = words[:n]
		}
		return strings.Join(words, " "), nil
	}
}

func testConfig() config.Config {
	return config.Config{
		MaxTextChars:        10_000_000,
		ChunkSize:           1000,
		SummaryMaxChunks:    5,
		QAContextChars:      10_000,
		SimilarityThreshold: 0.8,
		JobTTL:              time.Hour,
	}
}

func newTestPipeline(cfg config.Config, b inference.Backend) *Pipeline {
	return New(cfg, b, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// threePageDocument builds a text upload of three ~600 character paragraphs,
// the second of which mentions an email address.
func threePageDocument() []byte {
	para := func(lead string) string {
		return lead + " " + strings.TrimSpace(strings.Repeat("filler text about revenue. ", 22))
	}
	pages := []string{
		para("Quarterly report overview."),
		para("Contact finance@example.com for the raw figures."),
		para("Outlook for the next year."),
	}
	return []byte(strings.Join(pages, "\n\n"))
}

func TestProcess_EndToEnd(t *testing.T) {
	b := &fakeBackend{
		summarize: firstWords(8),
		answer: func(string, string) (string, error) {
			return "Revenue grew twelve percent; email cfo@example.org for details.", nil
		},
	}
	p := newTestPipeline(testConfig(), b)

	resp, err := p.Process(context.Background(), Request{
		Filename:     "report.txt",
		Data:         threePageDocument(),
		Question:     "How much did revenue grow?",
		SummaryWords: 500,
		AnswerWords:  150,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Pages)
	assert.Equal(t, 2, resp.Chunks, "~1800 characters split at 1000")
	assert.Equal(t, 2, b.summarizeCalls)
	assert.Equal(t, 1, b.answerCalls)
	assert.False(t, resp.Truncated)
	assert.Empty(t, resp.Warnings)

	assert.NotEmpty(t, resp.Summary)
	assert.LessOrEqual(t, textutil.CountWords(resp.Summary), 500)
	assert.NotContains(t, resp.Summary, "@")

	assert.Equal(t, "Revenue grew twelve percent; email [Email Removed] for details.", resp.Answer)
	assert.Contains(t, b.passage, "finance@example.com", "model sees the unredacted document")

	job := p.Job(resp.JobID)
	require.NotNil(t, job)
	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 3, snap.Progress.Pages)
	assert.Equal(t, resp.ContentHash, snap.ContentHash)
	assert.Same(t, resp, snap.Result)
}

func TestProcess_SummaryTruncatedAtWordLimit(t *testing.T) {
	b := &fakeBackend{
		summarize: firstWords(1000),
		answer:    func(string, string) (string, error) { return "x", nil },
	}
	p := newTestPipeline(testConfig(), b)

	resp, err := p.Process(context.Background(), Request{
		Filename:     "report.txt",
		Data:         threePageDocument(),
		Question:     "Anything?",
		SummaryWords: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 101, textutil.CountWords(resp.Summary))
	assert.True(t, strings.HasSuffix(resp.Summary, "..."))
}

func TestProcess_NoQuestion(t *testing.T) {
	b := &fakeBackend{
		summarize: firstWords(5),
		answer:    func(string, string) (string, error) { return "unused", nil },
	}
	p := newTestPipeline(testConfig(), b)

	resp, err := p.Process(context.Background(), Request{Filename: "report.txt", Data: threePageDocument()})
	require.NoError(t, err)
	assert.Equal(t, answer.NoQuestion, resp.Answer)
	assert.Zero(t, b.answerCalls)
}

func TestProcess_EmptyDocument(t *testing.T) {
	b := &fakeBackend{
		summarize: firstWords(5),
		answer:    func(string, string) (string, error) { return "unused", nil },
	}
	p := newTestPipeline(testConfig(), b)

	resp, err := p.Process(context.Background(), Request{Filename: "blank.txt", Data: []byte("\n\n  \n"), Question: "What?"})
	require.NoError(t, err)
	assert.Empty(t, resp.Summary)
	assert.Equal(t, answer.NoDocumentText, resp.Answer)
	assert.Zero(t, b.summarizeCalls)
	assert.Zero(t, b.answerCalls)
}

func TestProcess_CorruptPDFDegradesToWarning(t *testing.T) {
	b := &fakeBackend{
		summarize: firstWords(5),
		answer:    func(string, string) (string, error) { return "unused", nil },
	}
	p := newTestPipeline(testConfig(), b)

	resp, err := p.Process(context.Background(), Request{Filename: "broken.pdf", Data: []byte("not really a pdf"), Question: "What?"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], "Error extracting text")
	assert.Equal(t, answer.NoDocumentText, resp.Answer)
}

func TestProcess_TruncationWarning(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTextChars = 100
	b := &fakeBackend{
		summarize: firstWords(5),
		answer:    func(string, string) (string, error) { return "ok", nil },
	}
	p := newTestPipeline(cfg, b)

	resp, err := p.Process(context.Background(), Request{Filename: "report.txt", Data: threePageDocument(), Question: "q?"})
	require.NoError(t, err)
	assert.True(t, resp.Truncated)
	assert.Equal(t, 1, resp.Pages)
	assert.Contains(t, resp.Warnings, "PDF too large, processing truncated.")
}

func TestProcess_UnsupportedFormat(t *testing.T) {
	b := &fakeBackend{summarize: firstWords(5)}
	p := newTestPipeline(testConfig(), b)

	_, err := p.Process(context.Background(), Request{Filename: "image.png", Data: []byte{0x89}})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, b.summarizeCalls)
}

func TestProcess_ModelFailureMarksJobFailed(t *testing.T) {
	b := &fakeBackend{
		summarize: func(string) (string, error) { return "", errors.New("model crashed") },
	}
	p := newTestPipeline(testConfig(), b)

	_, err := p.Process(context.Background(), Request{Filename: "report.txt", Data: threePageDocument(), Question: "q?"})
	require.ErrorIs(t, err, ErrInference)

	require.Equal(t, 1, p.jobs.Len())
	for _, job := range p.jobs.jobs {
		snap := job.Snapshot()
		assert.Equal(t, StatusFailed, snap.Status)
		assert.Equal(t, "summarizing", snap.Phase)
		assert.NotEmpty(t, snap.Progress.Error)
	}
}

func TestProcess_AnswerFailureIsFatal(t *testing.T) {
	b := &fakeBackend{
		summarize: firstWords(5),
		answer:    func(string, string) (string, error) { return "", errors.New("qa offline") },
	}
	p := newTestPipeline(testConfig(), b)

	_, err := p.Process(context.Background(), Request{Filename: "report.txt", Data: threePageDocument(), Question: "q?"})
	assert.ErrorIs(t, err, ErrInference)
}

func TestPipeline_StartStop(t *testing.T) {
	p := newTestPipeline(testConfig(), &fakeBackend{})
	p.Start(context.Background())
	p.Stop()
}

func TestProcess_JobVisibleWhileRunning(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	b := &fakeBackend{
		summarize: func(text string) (string, error) {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
			return "summary", nil
		},
		answer: func(string, string) (string, error) { return "answer", nil },
	}
	p := newTestPipeline(testConfig(), b)

	type result struct {
		resp *Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := p.Process(context.Background(), Request{
			JobID:    "client-job-42",
			Filename: "report.txt",
			Data:     threePageDocument(),
			Question: "q?",
		})
		done <- result{resp, err}
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("summarizer never called")
	}
	job := p.Job("client-job-42")
	require.NotNil(t, job)
	snap := job.Snapshot()
	assert.Equal(t, StatusSummarizing, snap.Status)
	assert.Equal(t, 3, snap.Progress.Pages)
	assert.Nil(t, snap.Result)

	close(release)
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "client-job-42", r.resp.JobID)
	assert.Equal(t, StatusCompleted, p.Job("client-job-42").Snapshot().Status)
}

func TestProcess_DuplicateJobID(t *testing.T) {
	b := &fakeBackend{
		summarize: firstWords(5),
		answer:    func(string, string) (string, error) { return "ok", nil },
	}
	p := newTestPipeline(testConfig(), b)
	req := Request{JobID: "same", Filename: "report.txt", Data: threePageDocument(), Question: "q?"}

	_, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	calls := b.summarizeCalls

	_, err = p.Process(context.Background(), req)
	assert.ErrorIs(t, err, ErrDuplicateJob)
	assert.Equal(t, calls, b.summarizeCalls)
}
