// Package extract flattens an uploaded document into one text string,
// page by page, under a size cap.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfgpt/internal/doctree"
	"github.com/dgallion1/pdfgpt/internal/parser"
	"github.com/dgallion1/pdfgpt/internal/textutil"
)

// DefaultMaxChars is the accumulated text cap in characters.
const DefaultMaxChars = 10_000_000

// TruncationWarning is recorded when extraction stops at the cap.
const TruncationWarning = "PDF too large, processing truncated."

// Result is the extracted document plus any user-visible warnings.
type Result struct {
	doctree.Document
	Warnings []string
}

// Extractor accumulates page text from a parser.
type Extractor struct {
	MaxChars int
	Log      *slog.Logger
}

func New(maxChars int, log *slog.Logger) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{MaxChars: maxChars, Log: log}
}

// Extract reads pages in order and appends their text, separated by a
// newline. Once the accumulated length exceeds MaxChars the remaining pages
// are skipped and a truncation warning is recorded; the result may overshoot
// the cap by at most one page and its newline. A parser failure is not an error: it is
// recorded as a warning and the text is empty. Only context cancellation is
// returned as an error.
func (e *Extractor) Extract(ctx context.Context, p parser.Parser, r io.Reader, filename string) (*Result, error) {
	res := &Result{}
	res.Title = strings.TrimSuffix(filename, filepath.Ext(filename))

	var sb strings.Builder
	total := 0
	visit := func(page doctree.Page) bool {
		if ctx.Err() != nil {
			return false
		}
		res.Pages++
		if page.Text != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
				total++
			}
			sb.WriteString(page.Text)
			total += textutil.RuneLen(page.Text)
		}
		if total > e.MaxChars {
			res.Truncated = true
			return false
		}
		return true
	}

	err := safeParse(p, r, filename, visit)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		e.Log.Warn("extraction failed", "filename", filename, "pages", res.Pages, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("Error extracting text: %s", err))
		res.Truncated = false
		return res, nil
	}

	res.Text = sb.String()
	if res.Truncated {
		e.Log.Warn("extraction truncated", "filename", filename, "pages", res.Pages, "chars", total, "cap", e.MaxChars)
		res.Warnings = append(res.Warnings, TruncationWarning)
	}
	return res, nil
}

// safeParse converts a panic inside a parser library into an error.
func safeParse(p parser.Parser, r io.Reader, filename string, visit parser.VisitFunc) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parser panic: %v", rec)
		}
	}()
	return p.Parse(r, filename, visit)
}
