// Package sanitize cleans owner- and claimant-supplied free text before it
// is stored or embedded in notification messages.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Text trims whitespace, strips HTML tags, escapes special characters and
// enforces maxLength. Tags are removed before escaping so "<b>hi</b>"
// becomes "hi", not escaped markup.
func Text(input string, maxLength int) string {
	s := strings.TrimSpace(input)
	s = tagPattern.ReplaceAllString(s, "")
	s = escaper.Replace(s)
	if maxLength > 0 && len(s) > maxLength {
		// Back up to a rune boundary so the cut never produces invalid UTF-8.
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
