package converter

import (
	"fmt"
	"strings"

	"github.com/mark3labs/transcriptr/internal/transcript"
)

// formatTimestamp renders an entry timestamp for display in UTC. Unparseable
// values pass through unchanged rather than disappearing.
func formatTimestamp(timestamp string) string {
	if timestamp == "" {
		return ""
	}
	ts := transcript.ParseTimestamp(timestamp)
	if ts.IsZero() {
		return timestamp
	}
	return ts.UTC().Format("2006-01-02 15:04:05")
}

// formatTimestampRange renders a first/last pair, collapsing equal ends.
func formatTimestampRange(first, last string) string {
	switch {
	case first != "" && last != "" && first != last:
		return formatTimestamp(first) + " - " + formatTimestamp(last)
	case first != "":
		return formatTimestamp(first)
	default:
		return ""
	}
}

// usageLine is the per-message token footer.
func usageLine(usage *transcript.Usage) string {
	var parts []string
	if usage.InputTokens > 0 {
		parts = append(parts, fmt.Sprintf("in: %d", usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		parts = append(parts, fmt.Sprintf("out: %d", usage.OutputTokens))
	}
	if usage.CacheCreationInputTokens > 0 {
		parts = append(parts, fmt.Sprintf("cache write: %d", usage.CacheCreationInputTokens))
	}
	if usage.CacheReadInputTokens > 0 {
		parts = append(parts, fmt.Sprintf("cache read: %d", usage.CacheReadInputTokens))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Tokens: " + strings.Join(parts, " | ")
}

// truncateRunes shortens s to at most n characters with an ellipsis, never
// splitting a rune.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
