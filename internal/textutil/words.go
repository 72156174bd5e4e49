package textutil

import (
	"strings"
	"unicode/utf8"
)

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// TruncateWords keeps the first limit words of s. When words were dropped,
// the kept words are joined with single spaces, marker is appended after a
// space, and the second return value is true. Text within the limit is
// returned unchanged.
func TruncateWords(s string, limit int, marker string) (string, bool) {
	return TruncateWordsMapped(s, limit, marker, func(w string) string { return w })
}

// TruncateWordsMapped is TruncateWords for text that will be rewritten word
// by word. Each whitespace-separated word is passed through mapWord and
// weighted by the number of words the replacement contains, so the kept
// output never exceeds limit words once rewritten. A replacement that does
// not fit is dropped whole. Text within the limit is mapped and otherwise
// returned unchanged.
func TruncateWordsMapped(s string, limit int, marker string, mapWord func(string) string) (string, bool) {
	if limit < 0 {
		limit = 0
	}
	words := strings.Fields(s)
	mapped := make([]string, len(words))
	total := 0
	for i, w := range words {
		mapped[i] = mapWord(w)
		total += CountWords(mapped[i])
	}
	if total <= limit {
		var sb strings.Builder
		rest := s
		for i, w := range words {
			at := strings.Index(rest, w)
			sb.WriteString(rest[:at])
			sb.WriteString(mapped[i])
			rest = rest[at+len(w):]
		}
		sb.WriteString(rest)
		return sb.String(), false
	}

	kept := make([]string, 0, len(mapped))
	used := 0
	for _, m := range mapped {
		n := CountWords(m)
		if used+n > limit {
			break
		}
		kept = append(kept, m)
		used += n
	}
	if len(kept) == 0 {
		return marker, true
	}
	return strings.Join(kept, " ") + " " + marker, true
}

// PrefixRunes returns the first n characters of s.
func PrefixRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
