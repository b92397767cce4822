// Package textutil provides small, stateless helpers for scanning free text.
package textutil

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	urlPattern   = regexp.MustCompile(`https?://[^\s"'<>)]+`)
)

// ExtractEmails returns every email-shaped substring in s, in order of
// appearance, or nil if there are none. Callers that need a single address
// take the first element.
func ExtractEmails(s string) []string {
	return emailPattern.FindAllString(s, -1)
}

// ExtractURLs returns every http(s) URL in s, in order of appearance, or nil
// if there are none.
func ExtractURLs(s string) []string {
	return urlPattern.FindAllString(s, -1)
}
