package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_ExactMultiple(t *testing.T) {
	text := strings.Repeat("a", 3000)
	chunks := Split(text, 1000)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if c.Offset != i*1000 {
			t.Errorf("chunk %d: expected offset %d, got %d", i, i*1000, c.Offset)
		}
		if len(c.Text) != 1000 {
			t.Errorf("chunk %d: expected 1000 chars, got %d", i, len(c.Text))
		}
	}
}

func TestSplit_LastChunkShorter(t *testing.T) {
	chunks := Split("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i].Text)
		}
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split("", 1000); len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestSplit_DefaultSizeFallback(t *testing.T) {
	chunks := Split(strings.Repeat("x", 2500), 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks with default size, got %d", len(chunks))
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	text := strings.Repeat("日本語", 5) // 15 characters
	chunks := Split(text, 4)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:3] {
		if n := utf8.RuneCountInString(c.Text); n != 4 {
			t.Errorf("chunk %d: expected 4 characters, got %d", i, n)
		}
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d: split inside a rune", i)
		}
	}
}

func TestSplit_CoverageProperty(t *testing.T) {
	inputs := []string{
		"a",
		"hello world",
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 97),
		strings.Repeat("ünïcödé ", 333),
	}
	sizes := []int{1, 2, 7, 100, 1000, 5000}

	for _, text := range inputs {
		for _, size := range sizes {
			chunks := Split(text, size)

			if got := strings.Join(Texts(chunks), ""); got != text {
				t.Fatalf("size=%d: chunks do not reproduce input", size)
			}

			n := utf8.RuneCountInString(text)
			want := (n + size - 1) / size
			if len(chunks) != want {
				t.Errorf("size=%d len=%d: expected %d chunks, got %d", size, n, want, len(chunks))
			}
		}
	}
}
