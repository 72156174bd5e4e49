// Package redact masks email addresses in generated text. It is a best-effort
// privacy guard for the simple local@domain.tld shape only; it does not
// detect names, phone numbers or other personal data.
package redact

import (
	"regexp"

	"github.com/dgallion1/pdfgpt/internal/textutil"
)

// EmailPlaceholder replaces every matched address.
const EmailPlaceholder = "[Email Removed]"

var emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)

// Emails replaces every email address in text with EmailPlaceholder.
func Emails(text string) string {
	return emailPattern.ReplaceAllLiteralString(text, EmailPlaceholder)
}

// CountEmails reports how many addresses Emails would replace.
func CountEmails(text string) int {
	return len(emailPattern.FindAllStringIndex(text, -1))
}

// TruncateWords keeps at most limit words of text with every address
// redacted. The placeholder is counted at its own word length, so redaction
// never pushes the result past limit words (marker excluded).
func TruncateWords(text string, limit int, marker string) (string, bool) {
	return textutil.TruncateWordsMapped(text, limit, marker, Emails)
}
