package tui

import (
	"fmt"
	"strings"

	"github.com/mark3labs/transcriptr/internal/render"
	"github.com/mark3labs/transcriptr/internal/transcript"
	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

// collapsedToolLines is the number of output lines a collapsed tool call
// shows before truncating.
const collapsedToolLines = 10

// collapsedThinkingLines is the number of trailing lines a collapsed
// thinking block shows.
const collapsedThinkingLines = 10

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// UserMessageItem is one user text message.
type UserMessageItem struct {
	id           string
	content      string
	cachedRender string
	cachedWidth  int
}

func (u *UserMessageItem) ID() string { return u.id }

func (u *UserMessageItem) Render(width int) string {
	if u.cachedWidth == width && u.cachedRender != "" {
		return u.cachedRender
	}

	s := theme.Current().S()
	effectiveWidth := width - 2
	if effectiveWidth > 120 {
		effectiveWidth = 120
	}
	if effectiveWidth < 1 {
		effectiveWidth = 1
	}

	body := wrapText(u.content, effectiveWidth)
	result := s.UserHeader.Render("User") + "\n" + s.UserBorder.Render(body)

	u.cachedRender = result
	u.cachedWidth = width
	return result
}

func (u *UserMessageItem) Height() int { return countLines(u.cachedRender) }

// AssistantMessageItem is one assistant text message, rendered as markdown.
type AssistantMessageItem struct {
	id           string
	content      string
	cachedRender string
	cachedWidth  int
}

func (a *AssistantMessageItem) ID() string { return a.id }

// Render wraps the markdown body in the assistant border and caps the
// effective width at min(width-2, 120).
func (a *AssistantMessageItem) Render(width int) string {
	if a.cachedWidth == width && a.cachedRender != "" {
		return a.cachedRender
	}

	effectiveWidth := width - 2
	if effectiveWidth > 120 {
		effectiveWidth = 120
	}
	if effectiveWidth < 1 {
		effectiveWidth = 1
	}

	rendered := renderMarkdown(a.content, effectiveWidth)
	result := theme.Current().S().AssistantBorder.Render(rendered)

	a.cachedRender = result
	a.cachedWidth = width
	return result
}

func (a *AssistantMessageItem) Height() int { return countLines(a.cachedRender) }

// ThinkingMessageItem is an assistant thinking block, collapsed by default.
type ThinkingMessageItem struct {
	id           string
	content      string
	collapsed    bool
	cachedRender string
	cachedWidth  int
}

func (t *ThinkingMessageItem) ID() string { return t.id }

// Render shows the last lines of the thinking content when collapsed, with
// a hidden-line hint, wrapped in the thinking box style.
func (t *ThinkingMessageItem) Render(width int) string {
	if t.cachedWidth == width && t.cachedRender != "" {
		return t.cachedRender
	}

	s := theme.Current().S()
	lines := strings.Split(t.content, "\n")

	var result strings.Builder
	if t.collapsed && len(lines) > collapsedThinkingLines {
		hidden := len(lines) - collapsedThinkingLines
		result.WriteString(s.Truncation.Render(fmt.Sprintf("… (%d lines hidden)", hidden)))
		result.WriteString("\n")
		lines = lines[len(lines)-collapsedThinkingLines:]
	}
	result.WriteString(strings.Join(lines, "\n"))

	boxed := s.ThinkingBox.Width(width).Render(result.String())

	t.cachedRender = boxed
	t.cachedWidth = width
	return boxed
}

func (t *ThinkingMessageItem) Height() int { return countLines(t.cachedRender) }

func (t *ThinkingMessageItem) IsExpanded() bool { return !t.collapsed }

func (t *ThinkingMessageItem) ToggleExpanded() {
	t.collapsed = !t.collapsed
	t.cachedWidth = 0
}

// ToolCallItem is a tool invocation paired with its result. Edit and
// MultiEdit calls render as unified diffs; file-based tools get syntax
// highlighted output.
type ToolCallItem struct {
	id       string
	toolName string
	input    map[string]any
	filePath string
	output   string
	isError  bool

	// Edit/MultiEdit old→new pairs, in order.
	edits []transcript.EditItem

	expanded     bool
	cachedRender string
	cachedWidth  int
}

func (t *ToolCallItem) ID() string { return t.id }

// Render shows a header line with status icon, tool name and formatted
// params, then the body: a colored diff for edits, highlighted code for
// file reads, or plain styled output. Collapsed bodies cap at
// collapsedToolLines with a truncation hint.
func (t *ToolCallItem) Render(width int) string {
	if t.cachedWidth == width && t.cachedRender != "" {
		return t.cachedRender
	}

	s := theme.Current().S()

	var result strings.Builder

	icon := s.IconSuccess.Render("✓")
	if t.isError {
		icon = s.IconError.Render("×")
	}
	header := "  " + icon + " " + s.ToolName.Render(t.toolName)
	if len(t.input) > 0 {
		usedWidth := 4 + len(t.toolName) + 1
		paramWidth := width - usedWidth
		if paramWidth < 10 {
			paramWidth = 10
		}
		if params := formatToolParams(t.input, paramWidth); params != "" {
			header += " " + s.ToolParams.Render(params)
		}
	}
	result.WriteString(header)

	body := t.renderBody(width)
	if body != "" {
		result.WriteString("\n")
		result.WriteString(body)
	}

	rendered := result.String()
	t.cachedRender = rendered
	t.cachedWidth = width
	return rendered
}

func (t *ToolCallItem) renderBody(width int) string {
	s := theme.Current().S()

	// Edits render as diffs regardless of the result echo.
	if len(t.edits) > 0 {
		var parts []string
		for _, edit := range t.edits {
			if diff := renderUnifiedDiff(t.filePath, edit.OldString, edit.NewString, width); diff != "" {
				parts = append(parts, diff)
			}
		}
		return strings.Join(parts, "\n")
	}

	if t.output == "" {
		return ""
	}

	outputWidth := width - 2
	if outputWidth < 1 {
		outputWidth = 1
	}

	outputLines := strings.Split(render.StripANSI(t.output), "\n")
	hiddenCount := 0
	if !t.expanded && !t.isError && len(outputLines) > collapsedToolLines {
		hiddenCount = len(outputLines) - collapsedToolLines
		outputLines = outputLines[:collapsedToolLines]
	}

	var result strings.Builder
	switch {
	case t.isError:
		for _, line := range outputLines {
			result.WriteString(s.ToolError.Width(outputWidth).Render(line))
			result.WriteString("\n")
		}
	case t.filePath != "":
		highlighted := syntaxHighlight(strings.Join(outputLines, "\n"), t.filePath)
		for _, line := range strings.Split(highlighted, "\n") {
			result.WriteString("  " + line)
			result.WriteString("\n")
		}
	default:
		for _, line := range outputLines {
			result.WriteString(s.ToolOutput.Width(outputWidth).Render(line))
			result.WriteString("\n")
		}
	}

	if hiddenCount > 0 {
		result.WriteString(s.Truncation.Render(fmt.Sprintf("  …(%d more lines, enter to expand)", hiddenCount)))
		result.WriteString("\n")
	}

	return strings.TrimSuffix(result.String(), "\n")
}

func (t *ToolCallItem) Height() int { return countLines(t.cachedRender) }

func (t *ToolCallItem) IsExpanded() bool { return t.expanded }

func (t *ToolCallItem) ToggleExpanded() {
	t.expanded = !t.expanded
	t.cachedWidth = 0
}

// SystemMessageItem is a system log line.
type SystemMessageItem struct {
	id           string
	content      string
	cachedRender string
	cachedWidth  int
}

func (m *SystemMessageItem) ID() string { return m.id }

func (m *SystemMessageItem) Render(width int) string {
	if m.cachedWidth == width && m.cachedRender != "" {
		return m.cachedRender
	}
	text := render.StripANSI(m.content)
	result := theme.Current().S().ListMeta.Render(wrapText(text, width))
	m.cachedRender = result
	m.cachedWidth = width
	return result
}

func (m *SystemMessageItem) Height() int { return countLines(m.cachedRender) }

// SessionDividerItem marks the start of a session inside a combined view.
type SessionDividerItem struct {
	id           string
	title        string
	cachedRender string
	cachedWidth  int
}

func (d *SessionDividerItem) ID() string { return d.id }

func (d *SessionDividerItem) Render(width int) string {
	if d.cachedWidth == width && d.cachedRender != "" {
		return d.cachedRender
	}

	label := " " + d.title + " "
	lineWidth := (width - len(label)) / 2
	if lineWidth < 3 {
		lineWidth = 3
	}
	line := strings.Repeat("─", lineWidth)
	result := theme.Current().S().HeaderMeta.Render(line + label + line)

	d.cachedRender = result
	d.cachedWidth = width
	return result
}

func (d *SessionDividerItem) Height() int { return countLines(d.cachedRender) }

// formatToolParams formats tool input parameters for display.
// Shows the primary param (command/file_path) first, then remaining params
// as (key=val, ...). Truncates the result to fit within maxWidth.
func formatToolParams(input map[string]any, maxWidth int) string {
	if len(input) == 0 {
		return ""
	}

	var primaryKey string
	var primaryVal any
	if cmd, ok := input["command"]; ok {
		primaryKey = "command"
		primaryVal = cmd
	} else if fp, ok := input["file_path"]; ok {
		primaryKey = "file_path"
		primaryVal = fp
	} else if pattern, ok := input["pattern"]; ok {
		primaryKey = "pattern"
		primaryVal = pattern
	}

	var result strings.Builder
	if primaryKey != "" {
		result.WriteString(fmt.Sprintf("%v", primaryVal))
	}

	var remaining []string
	for key, val := range input {
		if key == primaryKey {
			continue
		}
		// Bulky payloads (file contents, prompts, edit bodies) have
		// their own rendering; keep the header line scannable.
		switch key {
		case "content", "old_string", "new_string", "edits", "prompt", "todos":
			continue
		}
		remaining = append(remaining, fmt.Sprintf("%s=%v", key, val))
	}

	if len(remaining) > 0 {
		if result.Len() > 0 {
			result.WriteString(" ")
		}
		result.WriteString("(")
		result.WriteString(strings.Join(remaining, ", "))
		result.WriteString(")")
	}

	str := result.String()
	str = strings.ReplaceAll(str, "\n", " ")
	if len(str) > maxWidth {
		if maxWidth > 3 {
			return str[:maxWidth-3] + "..."
		}
		return str[:maxWidth]
	}
	return str
}

// buildViewerItems converts transcript entries into viewer message items,
// pairing tool results with their originating calls and inserting session
// dividers when the entries span more than one session.
func buildViewerItems(entries []transcript.Entry) []MessageItem {
	sessionCount := map[string]bool{}
	for _, entry := range entries {
		if entry.SessionID != "" {
			sessionCount[entry.SessionID] = true
		}
	}
	multiSession := len(sessionCount) > 1

	var items []MessageItem
	pending := map[string]*ToolCallItem{}
	toolCtx := transcript.ToolUseContext{}
	lastSession := ""
	seq := 0

	nextID := func(kind string) string {
		seq++
		return fmt.Sprintf("%s-%d", kind, seq)
	}

	for _, entry := range entries {
		if entry.Type == "summary" || entry.IsMeta {
			continue
		}

		if multiSession && entry.SessionID != "" && entry.SessionID != lastSession {
			lastSession = entry.SessionID
			title := entry.SessionID
			if len(title) > 8 {
				title = title[:8]
			}
			items = append(items, &SessionDividerItem{
				id:    nextID("session"),
				title: "Session " + title,
			})
		}

		switch entry.Type {
		case "system":
			if entry.Content != "" {
				items = append(items, &SystemMessageItem{
					id:      nextID("system"),
					content: entry.Content,
				})
			}

		case "user":
			if entry.Message == nil {
				continue
			}
			for _, item := range entry.Message.Content {
				switch item.Type {
				case "text":
					if strings.TrimSpace(item.Text) == "" {
						continue
					}
					items = append(items, &UserMessageItem{
						id:      nextID("user"),
						content: item.Text,
					})
				case "tool_result":
					call, ok := pending[item.ToolUseID]
					if !ok {
						continue
					}
					call.output = item.Content.PlainText()
					call.isError = item.IsError
					call.cachedWidth = 0
					delete(pending, item.ToolUseID)
				}
			}

		case "assistant":
			if entry.Message == nil {
				continue
			}
			for _, item := range entry.Message.Content {
				switch item.Type {
				case "text":
					if strings.TrimSpace(item.Text) == "" {
						continue
					}
					items = append(items, &AssistantMessageItem{
						id:      nextID("assistant"),
						content: item.Text,
					})
				case "thinking":
					if strings.TrimSpace(item.Thinking) == "" {
						continue
					}
					items = append(items, &ThinkingMessageItem{
						id:        nextID("thinking"),
						content:   item.Thinking,
						collapsed: true,
					})
				case "tool_use":
					toolCtx.Record(item)
					call := &ToolCallItem{
						id:       nextID("tool"),
						toolName: item.Name,
						input:    item.Input,
						filePath: toolCtx[item.ID].FilePath,
					}
					switch input := transcript.ParseToolInput(item.Name, item.Input).(type) {
					case transcript.EditInput:
						call.filePath = input.FilePath
						call.edits = []transcript.EditItem{{
							OldString: input.OldString,
							NewString: input.NewString,
						}}
					case transcript.MultiEditInput:
						call.filePath = input.FilePath
						call.edits = input.Edits
					}
					items = append(items, call)
					if item.ID != "" {
						pending[item.ID] = call
					}
				}
			}
		}
	}

	return items
}
