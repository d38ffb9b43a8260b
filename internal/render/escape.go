package render

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes HTML special characters in text.
//
// Also normalizes line endings (CRLF -> LF) to prevent double spacing in
// <pre> blocks.
func EscapeHTML(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return htmlEscaper.Replace(normalized)
}
