package tui

import (
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"

	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

// renderUnifiedDiff renders an old→new string pair as a colored unified diff
// for the terminal. Returns "" when the inputs are identical.
func renderUnifiedDiff(filePath, oldText, newText string, width int) string {
	if oldText == newText {
		return ""
	}

	unified := udiff.Unified(filePath, filePath, oldText, newText)
	if unified == "" {
		return ""
	}

	s := theme.Current().S()
	contentWidth := width - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	var out []string
	for _, line := range strings.Split(strings.TrimRight(unified, "\n"), "\n") {
		var styled string
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			styled = s.DiffHunk.Width(contentWidth).Render(line)
		case strings.HasPrefix(line, "@@"):
			styled = s.DiffHunk.Width(contentWidth).Render(line)
		case strings.HasPrefix(line, "+"):
			styled = s.DiffInsert.Width(contentWidth).Render(line)
		case strings.HasPrefix(line, "-"):
			styled = s.DiffDelete.Width(contentWidth).Render(line)
		default:
			styled = s.DiffContext.Width(contentWidth).Render(line)
		}
		out = append(out, "  "+styled)
	}

	return strings.Join(out, "\n")
}
