package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Collapse policy thresholds. Markdown and code collapse on line counts,
// raw tool output collapses on character length since it has no guaranteed
// line structure.
const (
	MarkdownCollapseThreshold = 20
	MarkdownPreviewLines      = 5
	FileCollapseThreshold     = 12
	FilePreviewLines          = 5
	RawCollapseThreshold      = 200
	RawPreviewChars           = 200
)

// RenderCollapsibleCode wraps preview and full HTML in a details element with
// a line-count badge. The preview must derive from a strict prefix of the
// full content so expansion only ever reveals more, never different, content.
func RenderCollapsibleCode(previewHTML, fullHTML string, lineCount int, isMarkdown bool) string {
	markdownClass := ""
	if isMarkdown {
		markdownClass = " markdown"
	}
	return fmt.Sprintf(`<details class='collapsible-code'>
        <summary>
            <span class='line-count'>%d lines</span>
            <div class='preview-content%s'>%s</div>
        </summary>
        <div class='code-full%s'>%s</div>
    </details>`, lineCount, markdownClass, previewHTML, markdownClass, fullHTML)
}

// RenderMarkdownCollapsible renders markdown content, collapsible when it
// exceeds the line threshold. The preview is the first few raw lines
// re-rendered as markdown rather than a slice of the rendered HTML, so the
// preview markup stays well-formed on its own.
func RenderMarkdownCollapsible(rawContent, cssClass string) string {
	renderedHTML := RenderMarkdown(rawContent)

	lines := strings.Split(strings.TrimSuffix(rawContent, "\n"), "\n")
	if len(lines) <= MarkdownCollapseThreshold {
		return `<div class="` + cssClass + ` markdown">` + renderedHTML + `</div>`
	}

	previewText := strings.Join(lines[:MarkdownPreviewLines], "\n") + "\n\n..."
	previewHTML := RenderMarkdown(previewText)

	collapsible := RenderCollapsibleCode(previewHTML, renderedHTML, len(lines), true)
	return `<div class="` + cssClass + `">` + collapsible + `</div>`
}

// RenderFileContentCollapsible highlights file content and makes it
// collapsible when long. The preview is sliced from the already-highlighted
// HTML (TruncateHighlightedHTML) so highlighting cost is paid once.
// suffixHTML, when set, is appended inside the wrapper after the code.
func RenderFileContentCollapsible(codeContent, filePath, cssClass string, startLine int, suffixHTML string) string {
	highlightedHTML := HighlightCode(codeContent, filePath, true, startLine)

	var out strings.Builder
	out.WriteString("<div class='" + cssClass + "'>")

	lines := strings.Split(strings.TrimSuffix(codeContent, "\n"), "\n")
	if len(lines) > FileCollapseThreshold {
		previewHTML := TruncateHighlightedHTML(highlightedHTML, FilePreviewLines)
		out.WriteString(RenderCollapsibleCode(previewHTML, highlightedHTML, len(lines), false))
	} else {
		out.WriteString(highlightedHTML)
	}

	if suffixHTML != "" {
		out.WriteString(suffixHTML)
	}

	out.WriteString("</div>")
	return out.String()
}

// RenderRawCollapsible renders raw tool-output text, collapsible when it
// exceeds the character threshold. fullHTML is the already-rendered body
// (escaped text or ANSI spans); the preview is a plain character prefix of
// the raw content.
func RenderRawCollapsible(rawContent, fullHTML string) string {
	if utf8.RuneCountInString(rawContent) <= RawCollapseThreshold {
		return "<pre>" + fullHTML + "</pre>"
	}

	previewHTML := EscapeHTML(prefixChars(rawContent, RawPreviewChars)) + "..."
	return fmt.Sprintf(`<details class="collapsible-details">
        <summary>
            <div class="preview-content"><pre>%s</pre></div>
        </summary>
        <div class="details-content">
            <pre>%s</pre>
        </div>
    </details>`, previewHTML, fullHTML)
}

// prefixChars returns the first n characters of s without splitting a rune.
func prefixChars(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
