// Package answer resolves a question against the leading portion of a
// document and post-processes the model's answer.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/pdfgpt/internal/inference"
	"github.com/dgallion1/pdfgpt/internal/redact"
	"github.com/dgallion1/pdfgpt/internal/similarity"
	"github.com/dgallion1/pdfgpt/internal/textutil"
)

// User-facing fixed answers.
const (
	NoQuestion     = "No question provided."
	NoDocumentText = "No text could be extracted from the document, so the question cannot be answered."
	NoAnswer       = "No answer found in the document."
	TooSimilar     = "The answer is too similar to the summary. Please ask a more specific question."

	TruncationNotice = "... (Answer truncated. Please rephrase your question for a more concise answer.)"
)

const (
	DefaultContextChars = 10_000
	DefaultThreshold    = 0.8
)

// Outcome classifies how an answer was produced.
type Outcome string

const (
	OutcomeAnswered   Outcome = "answered"
	OutcomeNoQuestion Outcome = "no_question"
	OutcomeNoText     Outcome = "no_text"
	OutcomeNoAnswer   Outcome = "no_answer"
	OutcomeTooSimilar Outcome = "too_similar"
)

// Result is the final, user-visible answer.
type Result struct {
	Answer     string
	Outcome    Outcome
	Truncated  bool
	Similarity float64
}

// Resolver asks the QA model and applies the redundancy guard, word limit
// and redaction.
type Resolver struct {
	model        inference.QuestionAnswerer
	contextChars int
	threshold    float64
	log          *slog.Logger
}

func New(model inference.QuestionAnswerer, contextChars int, threshold float64, log *slog.Logger) *Resolver {
	if contextChars <= 0 {
		contextChars = DefaultContextChars
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Resolver{model: model, contextChars: contextChars, threshold: threshold, log: log}
}

// Answer returns the answer to question over the first contextChars
// characters of text. summary is the already-built document summary; an
// answer whose case-insensitive similarity to it exceeds the threshold is
// replaced with a fixed message. Model failures are returned as errors.
func (r *Resolver) Answer(ctx context.Context, text, question string, wordLimit int, summary string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return &Result{Answer: NoQuestion, Outcome: OutcomeNoQuestion}, nil
	}
	if strings.TrimSpace(text) == "" {
		return &Result{Answer: NoDocumentText, Outcome: OutcomeNoText}, nil
	}

	passage := textutil.PrefixRunes(text, r.contextChars)
	raw, err := r.model.Answer(ctx, question, passage)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	raw = strings.TrimSpace(raw)

	res := &Result{Outcome: OutcomeAnswered}
	switch {
	case raw == "":
		res.Answer = NoAnswer
		res.Outcome = OutcomeNoAnswer
	default:
		if summary != "" {
			res.Similarity = similarity.FoldedRatio(raw, summary)
		}
		if summary != "" && res.Similarity > r.threshold {
			res.Answer = TooSimilar
			res.Outcome = OutcomeTooSimilar
		} else {
			res.Answer, res.Truncated = redact.TruncateWords(raw, wordLimit, TruncationNotice)
		}
	}

	r.log.Debug("answer resolved",
		"outcome", res.Outcome,
		"similarity", res.Similarity,
		"truncated", res.Truncated,
		"context_chars", textutil.RuneLen(passage),
	)
	return res, nil
}
