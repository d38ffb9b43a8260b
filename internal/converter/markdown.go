package converter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/transcriptr/internal/render"
	"github.com/mark3labs/transcriptr/internal/transcript"
)

// Markdown output keeps long tool payloads readable by folding them into
// details blocks past this many lines.
const markdownFoldThreshold = 20

// RenderMarkdownPage renders the whole transcript as a GitHub-flavored
// Markdown document: session headers as H2, one H3 per message chunk.
func RenderMarkdownPage(title string, entries []transcript.Entry, c sessionCollection) string {
	var out strings.Builder
	out.WriteString("# " + title + "\n\n")

	seenSessions := map[string]bool{}
	toolCtx := transcript.ToolUseContext{}

	for _, entry := range entries {
		if entry.Type == "summary" {
			continue
		}

		sessionID := entry.SessionID
		if sessionID == "" {
			sessionID = "unknown"
		}

		if entry.Type == "system" {
			if entry.Content == "" {
				continue
			}
			writeMarkdownHeader(&out, "⚙️", "System", entry.Timestamp)
			out.WriteString(entry.Content + "\n\n")
			continue
		}

		if entry.Message == nil {
			continue
		}
		text := entry.Message.TextContent()
		if shouldSkipText(text) {
			continue
		}
		if strings.TrimSpace(text) == "" && !hasSpecialItems(entry.Message.Content) {
			continue
		}

		if !seenSessions[sessionID] {
			seenSessions[sessionID] = true
			header := sessionID
			if info := c.sessions[sessionID]; info != nil {
				header = info.Title()
				if summary := info.TokenSummary(); summary != "" && c.anyTokens(sessionID) {
					header += "\n\n" + summary
				}
			}
			out.WriteString("## 📄 " + header + "\n\n")
		}

		for _, chunk := range chunkContent(entry.Message.Content) {
			writeMarkdownChunk(&out, entry, chunk, toolCtx)
		}
	}
	return out.String()
}

// anyTokens reports whether a session accumulated usage worth printing.
func (c sessionCollection) anyTokens(sessionID string) bool {
	info := c.sessions[sessionID]
	return info != nil && (info.TotalInputTokens > 0 || info.TotalOutputTokens > 0)
}

func writeMarkdownHeader(out *strings.Builder, emoji, title, timestamp string) {
	out.WriteString("### " + emoji + " " + title)
	if ts := formatTimestamp(timestamp); ts != "" {
		out.WriteString(" (" + ts + ")")
	}
	out.WriteString("\n\n")
}

func writeMarkdownChunk(out *strings.Builder, entry transcript.Entry, chunk contentChunk, toolCtx transcript.ToolUseContext) {
	if chunk.special != nil {
		writeMarkdownSpecial(out, *chunk.special, toolCtx, entry.Timestamp)
		return
	}

	var text strings.Builder
	images := 0
	for _, item := range chunk.items {
		switch item.Type {
		case "text":
			if text.Len() > 0 {
				text.WriteByte('\n')
			}
			text.WriteString(item.Text)
		case "image":
			images++
		}
	}
	body := strings.TrimSpace(text.String())
	if body == "" && images == 0 {
		return
	}

	switch entry.Type {
	case "user":
		writeMarkdownUser(out, entry, body, images)
	case "assistant":
		writeMarkdownHeader(out, "🤖", "Assistant", entry.Timestamp)
		out.WriteString(body + "\n\n")
		for i := 0; i < images; i++ {
			out.WriteString("*[Image attached]*\n\n")
		}
	}
}

func writeMarkdownUser(out *strings.Builder, entry transcript.Entry, body string, images int) {
	if cmd, ok := parseSlashCommand(body); ok && isCommandMessage(body) {
		writeMarkdownHeader(out, "💻", "Command", entry.Timestamp)
		line := "`" + cmd.Name + "`"
		if cmd.Args != "" {
			line += " " + cmd.Args
		}
		out.WriteString(line + "\n\n")
		if cmd.Contents != "" {
			writeMarkdownFolded(out, "Command contents", cmd.Contents, "")
		}
		return
	}

	if stdout, _, ok := parseCommandOutput(body); ok {
		if stdout == "" {
			return
		}
		writeMarkdownHeader(out, "💻", "Command Output", entry.Timestamp)
		writeMarkdownFolded(out, "Output", stdout, "")
		return
	}

	if command, ok := parseBashInput(body); ok {
		writeMarkdownHeader(out, "🖥️", "Bash", entry.Timestamp)
		out.WriteString("```bash\n" + command + "\n```\n\n")
		return
	}

	if stdout, stderr, ok := parseBashOutput(body); ok {
		writeMarkdownHeader(out, "🖥️", "Bash Output", entry.Timestamp)
		if stdout != "" {
			writeMarkdownFolded(out, "stdout", render.StripANSI(stdout), "")
		}
		if stderr != "" {
			writeMarkdownFolded(out, "stderr", render.StripANSI(stderr), "")
		}
		return
	}

	if isCompactedSummary(body) {
		writeMarkdownHeader(out, "🔄", "Compacted Conversation", entry.Timestamp)
		writeMarkdownFolded(out, "Summary", body, "")
		return
	}

	title := "User"
	emoji := "👤"
	if body == "" && images > 0 {
		title = "Image"
		emoji = "🖼️"
	}
	writeMarkdownHeader(out, emoji, title, entry.Timestamp)
	if body != "" {
		out.WriteString(blockquote(body) + "\n\n")
	}
	for i := 0; i < images; i++ {
		out.WriteString("*[Image attached]*\n\n")
	}
}

func writeMarkdownSpecial(out *strings.Builder, item transcript.ContentItem, toolCtx transcript.ToolUseContext, timestamp string) {
	switch item.Type {
	case "tool_use":
		toolCtx.Record(item)
		title := "Tool: " + item.Name
		if hint := toolTitleHint(item); hint != "" {
			title += " · " + hint
		}
		writeMarkdownHeader(out, "🔧", title, timestamp)
		if len(item.Input) > 0 {
			pretty, err := json.MarshalIndent(item.Input, "", "  ")
			if err == nil {
				writeMarkdownFolded(out, "Input", string(pretty), "json")
			}
		}

	case "tool_result":
		ref := toolCtx[item.ToolUseID]
		title := "Tool Result"
		emoji := "✅"
		if ref.Name != "" {
			title = "Result: " + ref.Name
		}
		if item.IsError {
			emoji = "❌"
			title += " (error)"
		}
		writeMarkdownHeader(out, emoji, title, timestamp)
		text := item.Content.PlainText()
		if strings.TrimSpace(text) != "" {
			writeMarkdownFolded(out, "Output", render.StripANSI(text), "")
		}
		if item.Content.HasImages() {
			out.WriteString("*[Image attached]*\n\n")
		}

	case "thinking":
		body := strings.TrimSpace(item.Thinking)
		if body == "" {
			return
		}
		writeMarkdownHeader(out, "💭", "Thinking", timestamp)
		writeMarkdownFolded(out, "Thinking", body, "")
	}
}

// writeMarkdownFolded writes body fenced, inside a details block when it
// runs past the fold threshold. The fence widens past any backtick run in
// the body so embedded fences cannot break out.
func writeMarkdownFolded(out *strings.Builder, summary, body, lang string) {
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	block := fence + lang + "\n" + strings.TrimRight(body, "\n") + "\n" + fence + "\n"

	if strings.Count(body, "\n") >= markdownFoldThreshold {
		fmt.Fprintf(out, "<details>\n<summary>%s (%d lines)</summary>\n\n%s\n</details>\n\n",
			summary, strings.Count(body, "\n")+1, block)
		return
	}
	out.WriteString(block + "\n")
}

func blockquote(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
