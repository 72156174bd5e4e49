package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Every heading
// starts a new page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string, visit VisitFunc) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	em := newSectionEmitter(visit)

	for n := doc.FirstChild(); n != nil && !em.stopped; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			em.heading(string(h.Text(src)))
			continue
		}
		em.text(blockText(n, src))
	}
	em.flush()
	return nil
}

// blockText gets the text content of a goldmark AST node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	// Leaf blocks carry their source lines; inline children would repeat them.
	if lines := n.Lines(); n.Type() == ast.TypeBlock && lines.Len() > 0 {
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if buf.Len() > 0 && c.Type() == ast.TypeBlock {
			buf.WriteByte('\n')
		}
		buf.WriteString(blockText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
