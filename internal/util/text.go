package util

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var plainText = bluemonday.StrictPolicy()

// maxSanitizePasses bounds the decode/strip loop for deeply nested entities.
const maxSanitizePasses = 8

// SanitizeText strips every HTML tag from s and returns the remaining plain
// text, trimmed. Entities are decoded before stripping, so markup sent as
// &lt;tag&gt; is removed like literal markup. Text shaped like a tag with no
// space after '<' is parsed as a tag and dropped.
func SanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(plainText.Sanitize(html.UnescapeString(s)))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	// Not stable after the last pass: keep the escaped form.
	return strings.TrimSpace(plainText.Sanitize(s))
}

// TextLength counts characters, not bytes.
func TextLength(s string) int {
	return utf8.RuneCountInString(s)
}
