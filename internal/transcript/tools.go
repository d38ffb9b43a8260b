package transcript

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ToolInput is a typed tool invocation payload.
type ToolInput interface{ toolInput() }

// ToolOutput is a typed tool result payload parsed from the result echo.
type ToolOutput interface{ toolOutput() }

type BashInput struct {
	Command         string `json:"command"`
	Description     string `json:"description,omitempty"`
	Timeout         int    `json:"timeout,omitempty"`
	RunInBackground bool   `json:"run_in_background,omitempty"`
}

type ReadInput struct {
	FilePath string `json:"file_path"`
	Offset   int    `json:"offset,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type WriteInput struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

type EditInput struct {
	FilePath   string `json:"file_path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

type EditItem struct {
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

type MultiEditInput struct {
	FilePath string     `json:"file_path"`
	Edits    []EditItem `json:"edits"`
}

type GlobInput struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
}

type GrepInput struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
	Glob    string `json:"glob,omitempty"`
}

type TaskInput struct {
	Prompt       string `json:"prompt"`
	Description  string `json:"description,omitempty"`
	SubagentType string `json:"subagent_type,omitempty"`
}

type TodoWriteItem struct {
	ID       string `json:"id,omitempty"`
	Content  string `json:"content"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
}

type TodoWriteInput struct {
	Todos []TodoWriteItem `json:"todos"`
}

type AskUserQuestionOption struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type AskUserQuestionItem struct {
	Question    string                  `json:"question"`
	Header      string                  `json:"header,omitempty"`
	Options     []AskUserQuestionOption `json:"options,omitempty"`
	MultiSelect bool                    `json:"multiSelect,omitempty"`
}

type AskUserQuestionInput struct {
	Questions []AskUserQuestionItem `json:"questions"`
	// Question is the legacy single-question form.
	Question string `json:"question,omitempty"`
}

type ExitPlanModeInput struct {
	Plan string `json:"plan"`
}

type WebSearchInput struct {
	Query string `json:"query"`
}

func (BashInput) toolInput()            {}
func (ReadInput) toolInput()            {}
func (WriteInput) toolInput()           {}
func (EditInput) toolInput()            {}
func (MultiEditInput) toolInput()       {}
func (GlobInput) toolInput()            {}
func (GrepInput) toolInput()            {}
func (TaskInput) toolInput()            {}
func (TodoWriteInput) toolInput()       {}
func (AskUserQuestionInput) toolInput() {}
func (ExitPlanModeInput) toolInput()    {}
func (WebSearchInput) toolInput()       {}

type ReadOutput struct {
	FilePath       string
	Content        string
	StartLine      int
	NumLines       int
	TotalLines     int
	IsTruncated    bool
	SystemReminder string
}

type EditOutput struct {
	FilePath string
	// Message holds the cat-n snippet echoed back by the tool.
	Message   string
	StartLine int
}

type WriteOutput struct {
	FilePath string
	Message  string
}

type BashOutput struct {
	Content string
	HasANSI bool
}

type TaskOutput struct {
	Result string
}

type QuestionAnswer struct {
	Question string
	Answer   string
}

type AskUserQuestionOutput struct {
	Answers    []QuestionAnswer
	RawMessage string
}

type ExitPlanModeOutput struct {
	Message  string
	Approved bool
}

type WebSearchLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type WebSearchOutput struct {
	Summary string
	Links   []WebSearchLink
}

func (ReadOutput) toolOutput()            {}
func (EditOutput) toolOutput()            {}
func (WriteOutput) toolOutput()           {}
func (BashOutput) toolOutput()            {}
func (TaskOutput) toolOutput()            {}
func (AskUserQuestionOutput) toolOutput() {}
func (ExitPlanModeOutput) toolOutput()    {}
func (WebSearchOutput) toolOutput()       {}

// ParseToolInput decodes a raw tool_use input map into its typed form.
// Returns nil for unknown tool names or undecodable payloads; the caller
// falls back to the generic params-table rendering.
func ParseToolInput(toolName string, input map[string]any) ToolInput {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil
	}

	decode := func(v ToolInput) ToolInput {
		if err := json.Unmarshal(raw, v); err != nil {
			return nil
		}
		return v
	}

	switch toolName {
	case "Bash":
		if v := decode(&BashInput{}); v != nil {
			return *v.(*BashInput)
		}
		return BashInput{Command: stringField(input, "command"), Description: stringField(input, "description")}
	case "Read":
		if v := decode(&ReadInput{}); v != nil {
			return *v.(*ReadInput)
		}
		return ReadInput{FilePath: stringField(input, "file_path")}
	case "Write":
		if v := decode(&WriteInput{}); v != nil {
			return *v.(*WriteInput)
		}
		return WriteInput{FilePath: stringField(input, "file_path"), Content: stringField(input, "content")}
	case "Edit":
		if v := decode(&EditInput{}); v != nil {
			return *v.(*EditInput)
		}
		return EditInput{
			FilePath:  stringField(input, "file_path"),
			OldString: stringField(input, "old_string"),
			NewString: stringField(input, "new_string"),
		}
	case "MultiEdit":
		if v := decode(&MultiEditInput{}); v != nil {
			return *v.(*MultiEditInput)
		}
		return parseMultiEditLenient(input)
	case "Glob":
		if v := decode(&GlobInput{}); v != nil {
			return *v.(*GlobInput)
		}
		return GlobInput{Pattern: stringField(input, "pattern"), Path: stringField(input, "path")}
	case "Grep":
		if v := decode(&GrepInput{}); v != nil {
			return *v.(*GrepInput)
		}
		return GrepInput{Pattern: stringField(input, "pattern"), Path: stringField(input, "path")}
	case "Task":
		if v := decode(&TaskInput{}); v != nil {
			return *v.(*TaskInput)
		}
		return TaskInput{
			Prompt:       stringField(input, "prompt"),
			Description:  stringField(input, "description"),
			SubagentType: stringField(input, "subagent_type"),
		}
	case "TodoWrite":
		if v := decode(&TodoWriteInput{}); v != nil {
			return *v.(*TodoWriteInput)
		}
		return parseTodoWriteLenient(input)
	case "AskUserQuestion", "ask_user_question":
		if v := decode(&AskUserQuestionInput{}); v != nil {
			return *v.(*AskUserQuestionInput)
		}
		return parseAskUserQuestionLenient(input)
	case "ExitPlanMode":
		if v := decode(&ExitPlanModeInput{}); v != nil {
			return *v.(*ExitPlanModeInput)
		}
		return ExitPlanModeInput{Plan: stringField(input, "plan")}
	case "WebSearch":
		if v := decode(&WebSearchInput{}); v != nil {
			return *v.(*WebSearchInput)
		}
		return WebSearchInput{Query: stringField(input, "query")}
	}
	return nil
}

func stringField(input map[string]any, key string) string {
	if s, ok := input[key].(string); ok {
		return s
	}
	return ""
}

// parseMultiEditLenient keeps valid edit pairs and drops malformed ones.
func parseMultiEditLenient(input map[string]any) MultiEditInput {
	out := MultiEditInput{FilePath: stringField(input, "file_path")}
	edits, _ := input["edits"].([]any)
	for _, raw := range edits {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		replaceAll, _ := m["replace_all"].(bool)
		out.Edits = append(out.Edits, EditItem{
			OldString:  stringField(m, "old_string"),
			NewString:  stringField(m, "new_string"),
			ReplaceAll: replaceAll,
		})
	}
	return out
}

// parseTodoWriteLenient keeps valid todo items; a bare string becomes a
// content-only item.
func parseTodoWriteLenient(input map[string]any) TodoWriteInput {
	var out TodoWriteInput
	todos, _ := input["todos"].([]any)
	for _, raw := range todos {
		switch item := raw.(type) {
		case map[string]any:
			out.Todos = append(out.Todos, TodoWriteItem{
				ID:       stringField(item, "id"),
				Content:  stringField(item, "content"),
				Status:   stringField(item, "status"),
				Priority: stringField(item, "priority"),
			})
		case string:
			out.Todos = append(out.Todos, TodoWriteItem{Content: item})
		}
	}
	return out
}

func parseAskUserQuestionLenient(input map[string]any) AskUserQuestionInput {
	out := AskUserQuestionInput{Question: stringField(input, "question")}
	questions, _ := input["questions"].([]any)
	for _, raw := range questions {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := AskUserQuestionItem{
			Question: stringField(m, "question"),
			Header:   stringField(m, "header"),
		}
		if multi, ok := m["multiSelect"].(bool); ok {
			item.MultiSelect = multi
		}
		options, _ := m["options"].([]any)
		for _, rawOpt := range options {
			opt, ok := rawOpt.(map[string]any)
			if !ok {
				continue
			}
			item.Options = append(item.Options, AskUserQuestionOption{
				Label:       stringField(opt, "label"),
				Description: stringField(opt, "description"),
			})
		}
		out.Questions = append(out.Questions, item)
	}
	return out
}

// ToolUseRef carries the context a tool_result needs from its originating
// tool_use: the tool name always, and the file path for file-based tools.
type ToolUseRef struct {
	Name     string
	FilePath string
}

// ToolUseContext maps tool_use_id to the originating invocation so later
// tool_result entries can be parsed with the right tool semantics.
type ToolUseContext map[string]ToolUseRef

// Record stores the context for a tool_use content item.
func (c ToolUseContext) Record(item ContentItem) {
	if item.ID == "" {
		return
	}
	ref := ToolUseRef{Name: item.Name}
	switch item.Name {
	case "Read", "Edit", "Write":
		ref.FilePath = stringField(item.Input, "file_path")
	}
	c[item.ID] = ref
}

// ParseToolOutput parses a tool_result body into its typed form based on the
// originating tool name. Returns nil when no specialized parse applies; the
// caller falls back to raw rendering.
func ParseToolOutput(toolName string, result ResultContent, filePath string) ToolOutput {
	content := result.PlainText()
	if content == "" {
		return nil
	}

	switch toolName {
	case "Read":
		return parseReadOutput(content, filePath)
	case "Edit":
		return parseEditOutput(content, filePath)
	case "Write":
		return parseWriteOutput(content, filePath)
	case "Bash":
		return BashOutput{Content: content, HasANSI: looksLikeBashOutput(content)}
	case "Task":
		return TaskOutput{Result: content}
	case "AskUserQuestion", "ask_user_question":
		return parseAskUserQuestionOutput(content)
	case "ExitPlanMode":
		return parseExitPlanModeOutput(content)
	case "WebSearch":
		return parseWebSearchOutput(content)
	}
	return nil
}

var catNLinePattern = regexp.MustCompile(`^\s*(\d+)→(.*)$`)

// catNSnippet is a parsed cat-n formatted block: the code with line-number
// prefixes stripped, the starting line number and any trailing
// system-reminder block.
type catNSnippet struct {
	content        string
	startLine      int
	systemReminder string
}

// parseCatNSnippet parses "  123→content" lines starting at startIdx. Empty
// lines between numbered lines are allowed; any other non-matching line
// stops the scan. <system-reminder> blocks are captured separately.
func parseCatNSnippet(lines []string, startIdx int) (catNSnippet, bool) {
	var codeLines []string
	var reminder strings.Builder
	inReminder := false
	hasReminder := false
	startLine := 1

	for _, line := range lines[startIdx:] {
		if strings.Contains(line, "<system-reminder>") {
			inReminder = true
			hasReminder = true
			continue
		}
		if strings.Contains(line, "</system-reminder>") {
			inReminder = false
			continue
		}
		if inReminder {
			reminder.WriteString(line)
			reminder.WriteByte('\n')
			continue
		}

		if match := catNLinePattern.FindStringSubmatch(line); match != nil {
			if len(codeLines) == 0 {
				startLine = atoiDefault(match[1], 1)
			}
			codeLines = append(codeLines, match[2])
		} else if strings.TrimSpace(line) == "" {
			continue
		} else {
			break
		}
	}

	if len(codeLines) == 0 {
		return catNSnippet{}, false
	}

	snippet := catNSnippet{
		content:   strings.Join(codeLines, "\n"),
		startLine: startLine,
	}
	if hasReminder {
		snippet.systemReminder = strings.TrimSpace(reminder.String())
	}
	return snippet, true
}

func atoiDefault(s string, fallback int) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func parseReadOutput(content, filePath string) ToolOutput {
	if filePath == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	// Read output must start with a cat-n line.
	if len(lines) == 0 || !catNLinePattern.MatchString(lines[0]) {
		return nil
	}
	snippet, ok := parseCatNSnippet(lines, 0)
	if !ok {
		return nil
	}
	numLines := strings.Count(snippet.content, "\n") + 1
	return ReadOutput{
		FilePath:       filePath,
		Content:        snippet.content,
		StartLine:      snippet.startLine,
		NumLines:       numLines,
		TotalLines:     numLines,
		SystemReminder: snippet.systemReminder,
	}
}

func parseEditOutput(content, filePath string) ToolOutput {
	if filePath == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	// The snippet follows a preamble; find the first cat-n line.
	startIdx := -1
	for i, line := range lines {
		if catNLinePattern.MatchString(line) {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil
	}
	snippet, ok := parseCatNSnippet(lines, startIdx)
	if !ok {
		return nil
	}
	return EditOutput{FilePath: filePath, Message: snippet.content, StartLine: snippet.startLine}
}

func parseWriteOutput(content, filePath string) ToolOutput {
	if filePath == "" {
		return nil
	}
	firstLine, _, _ := strings.Cut(content, "\n")
	if firstLine == "" {
		return nil
	}
	return WriteOutput{FilePath: filePath, Message: firstLine}
}

var unixPathPattern = regexp.MustCompile(`/[a-zA-Z0-9_-]+(/[a-zA-Z0-9_.-]+)*`)

var bashIndicators = []string{
	"$ ",
	"❯ ",
	"> ",
	"\n+ ",
	"bash: ",
	"/bin/bash",
	"command not found",
	"Permission denied",
	"No such file or directory",
}

// looksLikeBashOutput is the heuristic for routing content through the ANSI
// converter: explicit escape sequences, shell prompt indicators, or
// unix-style paths.
func looksLikeBashOutput(content string) bool {
	if content == "" {
		return false
	}
	if strings.Contains(content, "\x1b[") {
		return true
	}
	if unixPathPattern.MatchString(content) {
		return true
	}
	for _, indicator := range bashIndicators {
		if strings.Contains(content, indicator) {
			return true
		}
	}
	return false
}

var (
	answeredQuestionsPattern = regexp.MustCompile(`(?s)^User has answered your questions?: (.+)\. You can now continue`)
	questionAnswerPattern    = regexp.MustCompile(`"([^"]+)"="([^"]+)"`)
)

// parseAskUserQuestionOutput extracts quoted Q/A pairs from the answer echo.
// Unexpected shapes return nil so the generic formatter takes over.
func parseAskUserQuestionOutput(content string) ToolOutput {
	match := answeredQuestionsPattern.FindStringSubmatch(content)
	if match == nil {
		return nil
	}
	pairs := questionAnswerPattern.FindAllStringSubmatch(match[1], -1)
	if len(pairs) == 0 {
		return nil
	}
	out := AskUserQuestionOutput{RawMessage: content}
	for _, pair := range pairs {
		out.Answers = append(out.Answers, QuestionAnswer{Question: pair[1], Answer: pair[2]})
	}
	return out
}

const approvedPlanMarker = "## Approved Plan:"

// parseExitPlanModeOutput truncates the redundant plan echo on approval.
// Everything strictly before the marker is kept, trailing whitespace trimmed.
func parseExitPlanModeOutput(content string) ToolOutput {
	approved := strings.Contains(content, "User has approved your plan")
	message := content
	if approved {
		if pos := strings.Index(content, approvedPlanMarker); pos > 0 {
			message = strings.TrimRight(content[:pos], " \t\n")
		}
	}
	return ExitPlanModeOutput{Message: message, Approved: approved}
}

// parseWebSearchOutput splits a search result echo into a link list (the
// "Links: [...]" JSON line) and the surrounding summary text.
func parseWebSearchOutput(content string) ToolOutput {
	var links []WebSearchLink
	var summaryLines []string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "Links: "); ok {
			var parsed []WebSearchLink
			if err := json.Unmarshal([]byte(rest), &parsed); err == nil {
				links = append(links, parsed...)
				continue
			}
		}
		summaryLines = append(summaryLines, line)
	}

	summary := strings.TrimSpace(strings.Join(summaryLines, "\n"))
	if summary == "" && len(links) == 0 {
		return nil
	}
	return WebSearchOutput{Summary: summary, Links: links}
}
