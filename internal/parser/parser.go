package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfgpt/internal/doctree"
)

// VisitFunc receives pages in document order. Returning false stops the
// parse; remaining pages are not read.
type VisitFunc func(page doctree.Page) bool

// Parser converts raw document bytes into a sequence of page texts.
type Parser interface {
	Parse(r io.Reader, filename string, visit VisitFunc) error
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, pdfFallback bool) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: pdfFallback}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// sectionEmitter turns a heading-delimited stream into pages. Heading
// nesting is flattened: every heading starts a new page.
type sectionEmitter struct {
	visit   VisitFunc
	n       int
	title   string
	body    strings.Builder
	stopped bool
}

func newSectionEmitter(visit VisitFunc) *sectionEmitter {
	return &sectionEmitter{visit: visit}
}

func (e *sectionEmitter) heading(title string) {
	e.flush()
	e.title = strings.TrimSpace(title)
}

func (e *sectionEmitter) text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if e.body.Len() > 0 {
		e.body.WriteString("\n\n")
	}
	e.body.WriteString(t)
}

func (e *sectionEmitter) flush() {
	if e.stopped {
		return
	}
	body := strings.TrimSpace(e.body.String())
	title := e.title
	e.body.Reset()
	e.title = ""
	if title == "" && body == "" {
		return
	}

	text := body
	if title != "" {
		text = title
		if body != "" {
			text += "\n\n" + body
		}
	}
	e.n++
	if !e.visit(doctree.Page{Number: e.n, Title: title, Text: text}) {
		e.stopped = true
	}
}
