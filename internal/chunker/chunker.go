package chunker

import (
	"github.com/dgallion1/pdfgpt/internal/doctree"
)

// DefaultChunkSize is the window width in characters.
const DefaultChunkSize = 1000

// Split partitions text into consecutive, non-overlapping windows of size
// characters starting at offset 0. The last chunk may be shorter. Joining
// the chunk texts in order reproduces text exactly. A size <= 0 falls back
// to DefaultChunkSize.
func Split(text string, size int) []doctree.Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if text == "" {
		return nil
	}

	var chunks []doctree.Chunk
	start, offset, n := 0, 0, 0
	for pos := range text {
		if n == size {
			chunks = append(chunks, doctree.Chunk{
				Text:   text[start:pos],
				Index:  len(chunks),
				Offset: offset,
			})
			start = pos
			offset += n
			n = 0
		}
		n++
	}
	chunks = append(chunks, doctree.Chunk{
		Text:   text[start:],
		Index:  len(chunks),
		Offset: offset,
	})
	return chunks
}

// Texts returns the text of each chunk, in order.
func Texts(chunks []doctree.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
