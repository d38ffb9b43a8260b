package converter

import (
	"html/template"
	"strings"

	"github.com/mark3labs/transcriptr/internal/render"
	"github.com/mark3labs/transcriptr/internal/transcript"
)

// MessageBlock is one rendered block of the page: a session header, a text
// chunk, a tool invocation or a tool result. HTML is pre-rendered and
// trusted; everything inside it went through the render package's escaping.
type MessageBlock struct {
	Index           int
	CSSClass        string
	Emoji           string
	Title           string
	Timestamp       string
	SessionID       string
	UUID            string
	IsSessionHeader bool
	HTML            template.HTML
	TokenLine       string
}

// buildMessages renders entries into template blocks: a session header when
// a session is first seen, then one block per content chunk. Entries with
// nothing renderable are dropped.
func buildMessages(entries []transcript.Entry, c sessionCollection, imageMode string) []MessageBlock {
	var blocks []MessageBlock
	seenSessions := map[string]bool{}
	toolCtx := transcript.ToolUseContext{}

	appendBlock := func(b MessageBlock) {
		b.Index = len(blocks)
		blocks = append(blocks, b)
	}

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
			mods := render.ClassModifiers{SystemLevel: entry.Level, IsSidechain: entry.IsSidechain}
			appendBlock(MessageBlock{
				CSSClass:  render.CSSClasses(render.KindSystem, mods),
				Emoji:     render.MessageEmoji(render.KindSystem, mods),
				Title:     "System",
				Timestamp: formatTimestamp(entry.Timestamp),
				SessionID: sessionID,
				UUID:      entry.UUID,
				HTML:      template.HTML(render.RenderMarkdown(entry.Content)),
			})
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
			info := c.sessions[sessionID]
			title := sessionID
			if info != nil {
				title = info.Title()
			}
			appendBlock(MessageBlock{
				CSSClass:        render.CSSClasses(render.KindSessionHeader, render.ClassModifiers{}),
				Emoji:           render.MessageEmoji(render.KindSessionHeader, render.ClassModifiers{}),
				Title:           title,
				SessionID:       sessionID,
				IsSessionHeader: true,
			})
		}

		tokenLine := ""
		if entry.Type == "assistant" && c.showTokens[entry.UUID] && entry.Message.Usage != nil {
			tokenLine = usageLine(entry.Message.Usage)
		}

		for _, chunk := range chunkContent(entry.Message.Content) {
			block, ok := renderChunk(entry, chunk, toolCtx, imageMode)
			if !ok {
				continue
			}
			block.SessionID = sessionID
			block.UUID = entry.UUID
			block.Timestamp = formatTimestamp(entry.Timestamp)
			// Usage shows once, on the first chunk that can carry it.
			if tokenLine != "" && (block.CSSClass == "assistant" || strings.HasPrefix(block.CSSClass, "thinking")) {
				block.TokenLine = tokenLine
				tokenLine = ""
			}
			appendBlock(block)
		}
	}
	return blocks
}

// contentChunk groups adjacent text/image items; tool_use, tool_result and
// thinking items each form their own chunk.
type contentChunk struct {
	items   []transcript.ContentItem
	special *transcript.ContentItem
}

func isSpecialItem(item transcript.ContentItem) bool {
	switch item.Type {
	case "tool_use", "tool_result", "thinking":
		return true
	}
	return false
}

func hasSpecialItems(items transcript.ContentItems) bool {
	for _, item := range items {
		if isSpecialItem(item) {
			return true
		}
	}
	return false
}

func chunkContent(items transcript.ContentItems) []contentChunk {
	var chunks []contentChunk
	var regular []transcript.ContentItem

	flush := func() {
		if len(regular) > 0 {
			chunks = append(chunks, contentChunk{items: regular})
			regular = nil
		}
	}

	for _, item := range items {
		if isSpecialItem(item) {
			flush()
			special := item
			chunks = append(chunks, contentChunk{special: &special})
		} else {
			regular = append(regular, item)
		}
	}
	flush()
	return chunks
}

// renderChunk renders one chunk to a block. Returns false when the chunk has
// nothing to show.
func renderChunk(entry transcript.Entry, chunk contentChunk, toolCtx transcript.ToolUseContext, imageMode string) (MessageBlock, bool) {
	if chunk.special != nil {
		return renderSpecialItem(entry, *chunk.special, toolCtx, imageMode)
	}

	var text strings.Builder
	var imagesHTML strings.Builder
	for _, item := range chunk.items {
		switch item.Type {
		case "text":
			if text.Len() > 0 {
				text.WriteByte('\n')
			}
			text.WriteString(item.Text)
		case "image":
			if item.Source != nil {
				imagesHTML.WriteString(render.RenderImage(imageMode, item.Source.MediaType, item.Source.Data))
			}
		}
	}

	switch entry.Type {
	case "user":
		return renderUserText(entry, text.String(), imagesHTML.String())
	case "assistant":
		body := strings.TrimSpace(text.String())
		if body == "" && imagesHTML.Len() == 0 {
			return MessageBlock{}, false
		}
		mods := render.ClassModifiers{IsSidechain: entry.IsSidechain}
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindAssistant, mods),
			Emoji:    render.MessageEmoji(render.KindAssistant, mods),
			Title:    "Assistant",
			HTML:     template.HTML(render.RenderMarkdownCollapsible(body, "assistant-text") + imagesHTML.String()),
		}, true
	}
	return MessageBlock{}, false
}

// renderUserText classifies a user text chunk: slash command, command
// output, interactive bash, compacted summary, or plain prose.
func renderUserText(entry transcript.Entry, text, imagesHTML string) (MessageBlock, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && imagesHTML == "" {
		return MessageBlock{}, false
	}
	mods := render.ClassModifiers{IsSidechain: entry.IsSidechain}

	if cmd, ok := parseSlashCommand(text); ok && isCommandMessage(text) {
		var body strings.Builder
		body.WriteString("<div class='slash-command-name'><code>" + render.EscapeHTML(cmd.Name) + "</code>")
		if cmd.Args != "" {
			body.WriteString(" <span class='slash-command-args'>" + render.EscapeHTML(cmd.Args) + "</span>")
		}
		body.WriteString("</div>")
		if cmd.Contents != "" {
			body.WriteString(render.RenderMarkdownCollapsible(cmd.Contents, "slash-command-contents"))
		}
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindSlashCommand, mods),
			Emoji:    render.MessageEmoji(render.KindSlashCommand, mods),
			Title:    "Command",
			HTML:     template.HTML(body.String()),
		}, true
	}

	if stdout, isMarkdown, ok := parseCommandOutput(text); ok {
		if stdout == "" {
			return MessageBlock{}, false
		}
		var body string
		if isMarkdown {
			body = render.RenderMarkdownCollapsible(stdout, "command-output-content")
		} else {
			body = render.RenderRawCollapsible(stdout, render.EscapeHTML(stdout))
		}
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindCommandOutput, mods),
			Emoji:    render.MessageEmoji(render.KindCommandOutput, mods),
			Title:    "Command Output",
			HTML:     template.HTML(body),
		}, true
	}

	if command, ok := parseBashInput(text); ok {
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindBashInput, mods),
			Emoji:    render.MessageEmoji(render.KindBashInput, mods),
			Title:    "Bash",
			HTML:     template.HTML("<pre class='bash-tool-command'>" + render.EscapeHTML(command) + "</pre>"),
		}, true
	}

	if stdout, stderr, ok := parseBashOutput(text); ok {
		var body strings.Builder
		if stdout != "" {
			body.WriteString(render.RenderRawCollapsible(stdout, render.ConvertANSIToHTML(stdout)))
		}
		if stderr != "" {
			body.WriteString("<div class='bash-stderr'>" + render.RenderRawCollapsible(stderr, render.ConvertANSIToHTML(stderr)) + "</div>")
		}
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindBashOutput, mods),
			Emoji:    render.MessageEmoji(render.KindBashOutput, mods),
			Title:    "Bash Output",
			HTML:     template.HTML(body.String()),
		}, true
	}

	if isCompactedSummary(text) {
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindCompactedSummary, mods),
			Emoji:    render.MessageEmoji(render.KindCompactedSummary, mods),
			Title:    "Compacted Conversation",
			HTML:     template.HTML(render.RenderMarkdownCollapsible(text, "compacted-summary")),
		}, true
	}

	kind := render.KindUser
	title := "User"
	body := ""
	if trimmed != "" {
		body = render.RenderMarkdownCollapsible(text, "user-text")
	}
	if imagesHTML != "" && trimmed == "" {
		kind = render.KindImage
		title = "Image"
	}
	return MessageBlock{
		CSSClass: render.CSSClasses(kind, mods),
		Emoji:    render.MessageEmoji(kind, mods),
		Title:    title,
		HTML:     template.HTML(body + imagesHTML),
	}, true
}

// renderSpecialItem renders a tool_use, tool_result or thinking item.
func renderSpecialItem(entry transcript.Entry, item transcript.ContentItem, toolCtx transcript.ToolUseContext, imageMode string) (MessageBlock, bool) {
	mods := render.ClassModifiers{IsSidechain: entry.IsSidechain}

	switch item.Type {
	case "tool_use":
		toolCtx.Record(item)
		input := transcript.ParseToolInput(item.Name, item.Input)
		title := "Tool: " + item.Name
		if hint := toolTitleHint(item); hint != "" {
			title += " · " + hint
		}
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindToolUse, mods),
			Emoji:    render.MessageEmoji(render.KindToolUse, mods),
			Title:    title,
			HTML:     template.HTML(render.FormatToolInput(input, item.Input)),
		}, true

	case "tool_result":
		ref := toolCtx[item.ToolUseID]
		mods.IsError = item.IsError
		var body string
		if item.IsError {
			body = render.FormatToolResultRaw(item.Content, imageMode)
		} else {
			output := transcript.ParseToolOutput(ref.Name, item.Content, ref.FilePath)
			body = render.FormatToolOutput(output, item.Content, imageMode)
		}
		title := "Tool Result"
		if ref.Name != "" {
			title = "Result: " + ref.Name
		}
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindToolResult, mods),
			Emoji:    render.MessageEmoji(render.KindToolResult, mods),
			Title:    title,
			HTML:     template.HTML(body),
		}, true

	case "thinking":
		if strings.TrimSpace(item.Thinking) == "" {
			return MessageBlock{}, false
		}
		return MessageBlock{
			CSSClass: render.CSSClasses(render.KindThinking, mods),
			Emoji:    render.MessageEmoji(render.KindThinking, mods),
			Title:    "Thinking",
			HTML:     template.HTML(render.RenderMarkdownCollapsible(item.Thinking, "thinking-content")),
		}, true
	}
	return MessageBlock{}, false
}

// toolTitleHint is the short context shown next to the tool name: a file
// path, command description or pattern, depending on the tool.
func toolTitleHint(item transcript.ContentItem) string {
	for _, key := range []string{"file_path", "description", "pattern", "query"} {
		if s, ok := item.Input[key].(string); ok && s != "" {
			return truncateRunes(s, 100)
		}
	}
	return ""
}
