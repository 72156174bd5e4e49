// Package pipeline runs one uploaded document through extraction,
// chunking, summarization and question answering.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pdfgpt/internal/answer"
	"github.com/dgallion1/pdfgpt/internal/chunker"
	"github.com/dgallion1/pdfgpt/internal/config"
	"github.com/dgallion1/pdfgpt/internal/extract"
	"github.com/dgallion1/pdfgpt/internal/inference"
	"github.com/dgallion1/pdfgpt/internal/parser"
	"github.com/dgallion1/pdfgpt/internal/summarize"
)

var (
	// ErrUnsupportedFormat is returned for uploads no parser handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrInference is returned when a model call fails for good.
	ErrInference = errors.New("model inference failed")
	// ErrDuplicateJob is returned when a caller-chosen job ID is in use.
	ErrDuplicateJob = errors.New("job id already in use")
)

const sweepInterval = 5 * time.Minute

// Request is one upload with its question and word budgets.
type Request struct {
	// JobID lets the caller poll the job while Process runs. Empty means
	// a fresh uuid.
	JobID        string
	Filename     string
	Data         []byte
	Question     string
	SummaryWords int
	AnswerWords  int
}

// Response is the user-visible outcome of a request.
type Response struct {
	JobID       string   `json:"job_id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Answer      string   `json:"answer"`
	Warnings    []string `json:"warnings"`
	Truncated   bool     `json:"truncated"`
	Pages       int      `json:"pages"`
	Chunks      int      `json:"chunks"`
	ContentHash string   `json:"content_hash"`
}

// Pipeline wires the processing stages together and tracks jobs.
type Pipeline struct {
	jobs       *JobStore
	extractor  *extract.Extractor
	summarizer *summarize.Aggregator
	resolver   *answer.Resolver
	log        *slog.Logger

	chunkSize   int
	pdfFallback bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a pipeline over model, which should already be serialized and
// retrying.
func New(cfg config.Config, model inference.Backend, log *slog.Logger) *Pipeline {
	return &Pipeline{
		jobs:        NewJobStore(cfg.JobTTL),
		extractor:   extract.New(cfg.MaxTextChars, log),
		summarizer:  summarize.New(model, cfg.SummaryMaxChunks, log),
		resolver:    answer.New(model, cfg.QAContextChars, cfg.SimilarityThreshold, log),
		log:         log,
		chunkSize:   cfg.ChunkSize,
		pdfFallback: cfg.PDFFallbackPdftotext,
	}
}

// Start launches the job store sweeper.
func (p *Pipeline) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.jobs.Sweep(sweepCtx, sweepInterval)
	}()
}

// Stop halts the sweeper.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Job returns a tracked job by ID, or nil.
func (p *Pipeline) Job(id string) *Job {
	return p.jobs.Get(id)
}

// Process runs req to completion. Extraction problems degrade to warnings;
// an unsupported format, a cancelled context or a model that keeps failing
// is returned as an error and the job is marked failed.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Response, error) {
	job := NewJob(req.Filename)
	if req.JobID != "" {
		job.ID = req.JobID
	}
	if !p.jobs.PutNew(job) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
	}
	log := p.log.With("job_id", job.ID, "filename", req.Filename)
	start := time.Now()

	if req.SummaryWords <= 0 {
		req.SummaryWords = config.SummaryWordsDefault
	}
	if req.AnswerWords <= 0 {
		req.AnswerWords = config.AnswerWordsDefault
	}

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	prs, err := parser.ForFile(req.Filename, p.pdfFallback)
	if err != nil {
		log.Warn("unsupported format", "error", err)
		job.Fail("extracting", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	doc, err := p.extractor.Extract(ctx, prs, bytes.NewReader(req.Data), req.Filename)
	if err != nil {
		job.Fail("extracting", "request cancelled")
		return nil, err
	}
	job.SetExtracted(doc.Title, doc.Pages, doc.Truncated, ContentHashHex([]byte(doc.Text)))
	job.AddWarnings(doc.Warnings...)
	log.Info("extracted document", "pages", doc.Pages, "truncated", doc.Truncated, "warnings", len(doc.Warnings))

	// Phase 2: Chunk
	chunks := chunker.Split(doc.Text, p.chunkSize)
	job.SetChunks(len(chunks))

	// Phase 3: Summarize
	job.SetStatus(StatusSummarizing, "summarizing")
	sum, err := p.summarizer.Summarize(ctx, chunker.Texts(chunks), req.SummaryWords)
	if err != nil {
		log.Error("summarization failed", "chunks", len(chunks), "error", err)
		return nil, p.fail(ctx, job, "summarizing", err)
	}
	job.SetChunksSummarized(sum.Summarized)
	job.AddWarnings(sum.Warnings...)

	// Phase 4: Answer
	job.SetStatus(StatusAnswering, "answering")
	ans, err := p.resolver.Answer(ctx, doc.Text, req.Question, req.AnswerWords, sum.Summary)
	if err != nil {
		log.Error("question answering failed", "error", err)
		return nil, p.fail(ctx, job, "answering", err)
	}

	snap := job.Snapshot()
	resp := &Response{
		JobID:       job.ID,
		Title:       snap.Title,
		Summary:     sum.Summary,
		Answer:      ans.Answer,
		Warnings:    snap.Progress.Warnings,
		Truncated:   doc.Truncated,
		Pages:       doc.Pages,
		Chunks:      len(chunks),
		ContentHash: snap.ContentHash,
	}
	job.Complete(resp)

	log.Info("job completed",
		"chunks", len(chunks),
		"summary_truncated", sum.Truncated,
		"answer_outcome", ans.Outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (p *Pipeline) fail(ctx context.Context, job *Job, phase string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		job.Fail(phase, "request cancelled")
		return ctxErr
	}
	job.Fail(phase, "The language model is unavailable. Please try again later.")
	return fmt.Errorf("%w: %w", ErrInference, err)
}
