package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/pdfgpt/internal/doctree"
)

// TextParser handles plain text files. Each blank-line separated paragraph
// is one page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string, visit VisitFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current strings.Builder
	n := 0
	emit := func() bool {
		if current.Len() == 0 {
			return true
		}
		n++
		ok := visit(doctree.Page{Number: n, Text: current.String()})
		current.Reset()
		return ok
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if !emit() {
				return nil
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	emit()
	return nil
}
