package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/transcriptr/internal/transcript"
)

// FormatToolInput renders a typed tool invocation payload. Unknown tool
// kinds (nil input) fall back to the generic parameter table over the raw
// input map.
func FormatToolInput(input transcript.ToolInput, rawInput map[string]any) string {
	switch in := input.(type) {
	case transcript.BashInput:
		return formatBashInput(in)
	case transcript.ReadInput:
		// The file path is already shown in the tool header; offset and
		// limit will be visible in the result.
		return ""
	case transcript.WriteInput:
		return RenderFileContentCollapsible(in.Content, in.FilePath, "write-tool-content", 1, "")
	case transcript.EditInput:
		return formatEditInput(in)
	case transcript.MultiEditInput:
		return formatMultiEditInput(in)
	case transcript.TaskInput:
		return RenderMarkdownCollapsible(in.Prompt, "task-prompt")
	case transcript.TodoWriteInput:
		return formatTodoWriteInput(in)
	case transcript.AskUserQuestionInput:
		return formatAskUserQuestionInput(in)
	case transcript.ExitPlanModeInput:
		return formatExitPlanModeInput(in)
	case transcript.WebSearchInput:
		return formatWebSearchInput(in)
	}
	return RenderParamsTable(rawInput)
}

// FormatToolOutput renders a typed tool result payload. A nil output (no
// specialized parse applied) falls through to the raw result formatter.
func FormatToolOutput(output transcript.ToolOutput, result transcript.ResultContent, imageMode string) string {
	switch out := output.(type) {
	case transcript.ReadOutput:
		return formatReadOutput(out)
	case transcript.EditOutput:
		return RenderFileContentCollapsible(out.Message, out.FilePath, "edit-tool-result", out.StartLine, "")
	case transcript.WriteOutput:
		return "<pre>" + EscapeHTML(out.Message) + " ...</pre>"
	case transcript.BashOutput:
		return formatBashOutput(out)
	case transcript.TaskOutput:
		return RenderMarkdownCollapsible(out.Result, "task-result")
	case transcript.AskUserQuestionOutput:
		return formatAskUserQuestionOutput(out)
	case transcript.ExitPlanModeOutput:
		return "<pre>" + EscapeHTML(out.Message) + "</pre>"
	case transcript.WebSearchOutput:
		return formatWebSearchOutput(out)
	}
	return FormatToolResultRaw(result, imageMode)
}

func formatBashInput(in transcript.BashInput) string {
	return "<div class='bash-tool-content'>" +
		"<pre class='bash-tool-command'>" + EscapeHTML(in.Command) + "</pre>" +
		"</div>"
}

func formatBashOutput(out transcript.BashOutput) string {
	var fullHTML string
	if out.HasANSI {
		fullHTML = ConvertANSIToHTML(out.Content)
	} else {
		fullHTML = EscapeHTML(out.Content)
	}
	return RenderRawCollapsible(out.Content, fullHTML)
}

func formatReadOutput(out transcript.ReadOutput) string {
	suffixHTML := ""
	if out.SystemReminder != "" {
		suffixHTML = "<div class='system-reminder'>🤖 <em>" + EscapeHTML(out.SystemReminder) + "</em></div>"
	}
	return RenderFileContentCollapsible(out.Content, out.FilePath, "read-tool-result", out.StartLine, suffixHTML)
}

func formatEditInput(in transcript.EditInput) string {
	var out strings.Builder
	out.WriteString("<div class='edit-tool-content'>")
	if in.ReplaceAll {
		out.WriteString("<div class='edit-replace-all'>🔄 Replace all occurrences</div>")
	}
	out.WriteString(RenderSingleDiff(in.OldString, in.NewString))
	out.WriteString("</div>")
	return out.String()
}

func formatMultiEditInput(in transcript.MultiEditInput) string {
	var out strings.Builder
	out.WriteString("<div class='multiedit-tool-content'>")
	out.WriteString("<div class='multiedit-file-path'>📝 " + EscapeHTML(in.FilePath) + "</div>")
	out.WriteString(fmt.Sprintf("<div class='multiedit-count'>Applying %d edits</div>", len(in.Edits)))
	for i, edit := range in.Edits {
		out.WriteString(fmt.Sprintf("<div class='multiedit-item'><div class='multiedit-item-header'>Edit #%d</div>", i+1))
		out.WriteString(RenderSingleDiff(edit.OldString, edit.NewString))
		out.WriteString("</div>")
	}
	out.WriteString("</div>")
	return out.String()
}

var todoStatusEmojis = map[string]string{
	"pending":     "⏳",
	"in_progress": "🔄",
	"completed":   "✅",
}

func formatTodoWriteInput(in transcript.TodoWriteInput) string {
	if len(in.Todos) == 0 {
		return "<div class='todo-content'><p><em>No todos found</em></p></div>"
	}

	var out strings.Builder
	out.WriteString("<div class='todo-list'>")
	for _, todo := range in.Todos {
		status := todo.Status
		if status == "" {
			status = "pending"
		}
		priority := todo.Priority
		if priority == "" {
			priority = "medium"
		}
		emoji, ok := todoStatusEmojis[status]
		if !ok {
			emoji = "⏳"
		}

		out.WriteString("<div class='todo-item " + status + " " + priority + "'>")
		out.WriteString("<span class='todo-status'>" + emoji + "</span>")
		out.WriteString("<span class='todo-content'>" + EscapeHTML(todo.Content) + "</span>")
		if todo.ID != "" {
			out.WriteString("<span class='todo-id'>#" + EscapeHTML(todo.ID) + "</span>")
		}
		out.WriteString("</div>")
	}
	out.WriteString("</div>")
	return out.String()
}

func formatAskUserQuestionInput(in transcript.AskUserQuestionInput) string {
	questions := in.Questions
	if len(questions) == 0 && in.Question != "" {
		questions = []transcript.AskUserQuestionItem{{Question: in.Question}}
	}
	if len(questions) == 0 {
		return "<div class='askuserquestion-content'><em>No question</em></div>"
	}

	var out strings.Builder
	out.WriteString("<div class='askuserquestion-content'>")
	for _, q := range questions {
		out.WriteString(renderQuestionItem(q))
	}
	out.WriteString("</div>")
	return out.String()
}

func renderQuestionItem(q transcript.AskUserQuestionItem) string {
	var out strings.Builder
	out.WriteString("<div class='question-block'>")

	if q.Header != "" {
		out.WriteString("<div class='question-header'>" + EscapeHTML(q.Header) + "</div>")
	}
	out.WriteString("<div class='question-text'><span class='qa-label'>Q:</span> " + EscapeHTML(q.Question) + "</div>")

	if len(q.Options) > 0 {
		hint := "(select one)"
		if q.MultiSelect {
			hint = "(select multiple)"
		}
		out.WriteString("<div class='question-options-hint'>" + hint + "</div>")
		out.WriteString("<ul class='question-options'>")
		for _, opt := range q.Options {
			out.WriteString("<li class='question-option'><strong>" + EscapeHTML(opt.Label) + "</strong>")
			if opt.Description != "" {
				out.WriteString("<span class='option-desc'> — " + EscapeHTML(opt.Description) + "</span>")
			}
			out.WriteString("</li>")
		}
		out.WriteString("</ul>")
	}

	out.WriteString("</div>")
	return out.String()
}

func formatAskUserQuestionOutput(out transcript.AskUserQuestionOutput) string {
	var b strings.Builder
	b.WriteString("<div class='askuserquestion-content askuserquestion-result'>")
	for _, qa := range out.Answers {
		b.WriteString("<div class='question-block answered'>")
		b.WriteString("<div class='question-text'><span class='qa-label'>Q:</span> " + EscapeHTML(qa.Question) + "</div>")
		b.WriteString("<div class='answer-text'><span class='qa-label answer'>A:</span> " + EscapeHTML(qa.Answer) + "</div>")
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String()
}

func formatExitPlanModeInput(in transcript.ExitPlanModeInput) string {
	if in.Plan == "" {
		return "<div class='plan-content'><em>No plan</em></div>"
	}
	return RenderMarkdownCollapsible(in.Plan, "plan-content")
}

// formatWebSearchInput shows the query only when it was truncated in the
// tool header (over 100 chars); short queries would just repeat the header.
func formatWebSearchInput(in transcript.WebSearchInput) string {
	if len(in.Query) <= 100 {
		return ""
	}
	return "<div class='websearch-query'>" + EscapeHTML(in.Query) + "</div>"
}

// formatWebSearchOutput renders the summary first and the links as a
// markdown list after a separator, all inside a collapsible markdown block.
func formatWebSearchOutput(out transcript.WebSearchOutput) string {
	var parts []string
	if out.Summary != "" {
		parts = append(parts, out.Summary)
	}
	if len(out.Links) > 0 {
		if len(parts) > 0 {
			parts = append(parts, "", "---", "")
		}
		for _, link := range out.Links {
			parts = append(parts, "- ["+link.Title+"]("+link.URL+")")
		}
	} else if out.Summary == "" {
		parts = append(parts, "*No results found*")
	}
	return RenderMarkdownCollapsible(strings.Join(parts, "\n"), "websearch-results")
}

var stringEchoPattern = regexp.MustCompile(`(?s)\nString:.*$`)

// stripErrorTags removes <tool_use_error> wrapper tags while keeping the
// message inside them.
func stripErrorTags(content string) string {
	content = strings.ReplaceAll(content, "<tool_use_error>", "")
	content = strings.ReplaceAll(content, "</tool_use_error>", "")
	return strings.TrimSpace(content)
}

// FormatToolResultRaw is the fallback formatter for tool results without a
// specialized output type, including structured content with embedded
// images. Text collapses over the raw-content threshold; image-bearing
// results are always collapsible since an image has no short preview.
func FormatToolResultRaw(result transcript.ResultContent, imageMode string) string {
	rawContent := result.PlainText()

	var imageParts []string
	for _, part := range result.Parts {
		if part.Type != "image" || part.Source == nil {
			continue
		}
		if img := RenderImage(imageMode, part.Source.MediaType, part.Source.Data); img != "" {
			imageParts = append(imageParts, img)
		}
	}

	if rawContent != "" {
		rawContent = stripErrorTags(rawContent)
		// Drop "String: ..." tails that just echo the tool input.
		rawContent = stringEchoPattern.ReplaceAllString(rawContent, "")
	}

	fullHTML := EscapeHTML(rawContent)

	if len(imageParts) > 0 {
		textHTML := ""
		if fullHTML != "" {
			textHTML = "<pre>" + fullHTML + "</pre>"
		}
		return fmt.Sprintf(`<details class="collapsible-details">
        <summary>
            <span class='preview-text'>Text and image content</span>
        </summary>
        <div class="details-content">
            %s%s
        </div>
    </details>`, textHTML, strings.Join(imageParts, ""))
	}

	return RenderRawCollapsible(rawContent, fullHTML)
}
