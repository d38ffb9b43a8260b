package transcript

import (
	"testing"
)

func TestParseToolInputBash(t *testing.T) {
	input := ParseToolInput("Bash", map[string]any{
		"command":     "go vet ./...",
		"description": "Vet the module",
	})

	bash, ok := input.(BashInput)
	if !ok {
		t.Fatalf("expected BashInput, got %T", input)
	}
	if bash.Command != "go vet ./..." || bash.Description != "Vet the module" {
		t.Errorf("unexpected fields: %+v", bash)
	}
}

func TestParseToolInputUnknownTool(t *testing.T) {
	if got := ParseToolInput("SomeNewTool", map[string]any{"x": 1}); got != nil {
		t.Errorf("unknown tool should return nil, got %+v", got)
	}
}

func TestParseToolInputMultiEditLenient(t *testing.T) {
	// One malformed entry in the edits list: kept pairs survive, the bad one
	// is dropped.
	input := ParseToolInput("MultiEdit", map[string]any{
		"file_path": "/tmp/f.go",
		"edits": []any{
			map[string]any{"old_string": "a", "new_string": "b"},
			"not an object",
			map[string]any{"old_string": "c", "new_string": "d", "replace_all": true},
		},
	})

	me, ok := input.(MultiEditInput)
	if !ok {
		t.Fatalf("expected MultiEditInput, got %T", input)
	}
	if len(me.Edits) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(me.Edits))
	}
	if !me.Edits[1].ReplaceAll {
		t.Errorf("replace_all lost in lenient parse: %+v", me.Edits[1])
	}
}

func TestParseToolInputTodoWriteBareStrings(t *testing.T) {
	input := ParseToolInput("TodoWrite", map[string]any{
		"todos": []any{
			"just a string task",
			map[string]any{"content": "structured task", "status": "completed"},
		},
	})

	tw, ok := input.(TodoWriteInput)
	if !ok {
		t.Fatalf("expected TodoWriteInput, got %T", input)
	}
	if len(tw.Todos) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(tw.Todos))
	}
	if tw.Todos[0].Content != "just a string task" {
		t.Errorf("bare string should become a content-only item: %+v", tw.Todos[0])
	}
}

func TestParseToolInputLegacyQuestionName(t *testing.T) {
	input := ParseToolInput("ask_user_question", map[string]any{"question": "Proceed?"})

	q, ok := input.(AskUserQuestionInput)
	if !ok {
		t.Fatalf("expected AskUserQuestionInput, got %T", input)
	}
	if q.Question != "Proceed?" {
		t.Errorf("legacy single question lost: %+v", q)
	}
}

func TestToolUseContextRecord(t *testing.T) {
	ctx := ToolUseContext{}
	ctx.Record(ContentItem{
		ID:    "tu1",
		Name:  "Read",
		Input: map[string]any{"file_path": "/src/main.go"},
	})
	ctx.Record(ContentItem{
		ID:    "tu2",
		Name:  "Bash",
		Input: map[string]any{"command": "ls", "file_path": "/should/be/ignored"},
	})
	ctx.Record(ContentItem{Name: "Read"}) // no id, dropped

	if len(ctx) != 2 {
		t.Fatalf("expected 2 recorded refs, got %d", len(ctx))
	}
	if ctx["tu1"].FilePath != "/src/main.go" {
		t.Errorf("file path not recorded for Read: %+v", ctx["tu1"])
	}
	if ctx["tu2"].FilePath != "" {
		t.Errorf("file path must only be kept for file tools: %+v", ctx["tu2"])
	}
}

func TestParseReadOutput(t *testing.T) {
	content := "     1→package main\n     2→\n     3→func main() {}\n\n<system-reminder>\nWhenever you read a file, check it.\n</system-reminder>"

	output := ParseToolOutput("Read", ResultContent{Text: content}, "/src/main.go")
	read, ok := output.(ReadOutput)
	if !ok {
		t.Fatalf("expected ReadOutput, got %T", output)
	}
	if read.Content != "package main\n\nfunc main() {}" {
		t.Errorf("line prefixes not stripped: %q", read.Content)
	}
	if read.StartLine != 1 {
		t.Errorf("StartLine = %d, want 1", read.StartLine)
	}
	if read.SystemReminder != "Whenever you read a file, check it." {
		t.Errorf("system reminder not captured: %q", read.SystemReminder)
	}
}

func TestParseReadOutputOffset(t *testing.T) {
	content := "    42→line a\n    43→line b"

	output := ParseToolOutput("Read", ResultContent{Text: content}, "/src/main.go")
	read, ok := output.(ReadOutput)
	if !ok {
		t.Fatalf("expected ReadOutput, got %T", output)
	}
	if read.StartLine != 42 {
		t.Errorf("StartLine = %d, want 42", read.StartLine)
	}
}

func TestParseReadOutputNonSnippet(t *testing.T) {
	output := ParseToolOutput("Read", ResultContent{Text: "File does not exist."}, "/src/main.go")
	if output != nil {
		t.Errorf("non-snippet content should return nil, got %+v", output)
	}
}

func TestParseEditOutputFindsSnippetAfterPreamble(t *testing.T) {
	content := "The file /src/main.go has been updated. Here's the result of running `cat -n` on a snippet of the edited file:\n    10→updated line\n    11→next line"

	output := ParseToolOutput("Edit", ResultContent{Text: content}, "/src/main.go")
	edit, ok := output.(EditOutput)
	if !ok {
		t.Fatalf("expected EditOutput, got %T", output)
	}
	if edit.StartLine != 10 {
		t.Errorf("StartLine = %d, want 10", edit.StartLine)
	}
	if edit.Message != "updated line\nnext line" {
		t.Errorf("snippet = %q", edit.Message)
	}
}

func TestParseBashOutputANSIDetection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"escape sequence", "\x1b[32mok\x1b[0m", true},
		{"unix path", "compiled /usr/local/bin/app", true},
		{"error indicator", "zsh: command not found: foo", true},
		{"plain prose", "All good.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := ParseToolOutput("Bash", ResultContent{Text: tt.content}, "")
			bash, ok := output.(BashOutput)
			if !ok {
				t.Fatalf("expected BashOutput, got %T", output)
			}
			if bash.HasANSI != tt.want {
				t.Errorf("HasANSI = %v, want %v for %q", bash.HasANSI, tt.want, tt.content)
			}
		})
	}
}

func TestParseAskUserQuestionOutput(t *testing.T) {
	content := `User has answered your questions: "Deploy now?"="Yes" "Which env?"="staging". You can now continue with the task.`

	output := ParseToolOutput("AskUserQuestion", ResultContent{Text: content}, "")
	qa, ok := output.(AskUserQuestionOutput)
	if !ok {
		t.Fatalf("expected AskUserQuestionOutput, got %T", output)
	}
	if len(qa.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(qa.Answers))
	}
	if qa.Answers[0].Question != "Deploy now?" || qa.Answers[0].Answer != "Yes" {
		t.Errorf("first pair wrong: %+v", qa.Answers[0])
	}
	if qa.Answers[1].Answer != "staging" {
		t.Errorf("second pair wrong: %+v", qa.Answers[1])
	}
}

func TestParseAskUserQuestionOutputUnexpectedShape(t *testing.T) {
	output := ParseToolOutput("AskUserQuestion", ResultContent{Text: "user aborted"}, "")
	if output != nil {
		t.Errorf("unexpected shape should return nil, got %+v", output)
	}
}

func TestParseExitPlanModeOutput(t *testing.T) {
	t.Run("approved plan echo truncated", func(t *testing.T) {
		content := "User has approved your plan. You can now start coding.\n\n## Approved Plan:\nthe whole plan repeated here"

		output := ParseToolOutput("ExitPlanMode", ResultContent{Text: content}, "")
		plan, ok := output.(ExitPlanModeOutput)
		if !ok {
			t.Fatalf("expected ExitPlanModeOutput, got %T", output)
		}
		if !plan.Approved {
			t.Error("expected Approved=true")
		}
		if plan.Message != "User has approved your plan. You can now start coding." {
			t.Errorf("message not truncated and trimmed: %q", plan.Message)
		}
	})

	t.Run("marker at position zero kept", func(t *testing.T) {
		content := "## Approved Plan:\nUser has approved your plan"

		output := ParseToolOutput("ExitPlanMode", ResultContent{Text: content}, "")
		plan := output.(ExitPlanModeOutput)
		if plan.Message != content {
			t.Errorf("leading marker must not truncate to empty: %q", plan.Message)
		}
	})

	t.Run("rejection passes through", func(t *testing.T) {
		content := "The user doesn't want to proceed.\n## Approved Plan:\nleftover"

		output := ParseToolOutput("ExitPlanMode", ResultContent{Text: content}, "")
		plan := output.(ExitPlanModeOutput)
		if plan.Approved {
			t.Error("expected Approved=false")
		}
		if plan.Message != content {
			t.Errorf("unapproved content must not truncate: %q", plan.Message)
		}
	})
}

func TestParseWebSearchOutput(t *testing.T) {
	content := "Web search results for query: \"go testing\"\n\nLinks: [{\"title\":\"Testing\",\"url\":\"https://go.dev/doc/tutorial/add-a-test\"}]\n\nThe tutorial covers table-driven tests."

	output := ParseToolOutput("WebSearch", ResultContent{Text: content}, "")
	ws, ok := output.(WebSearchOutput)
	if !ok {
		t.Fatalf("expected WebSearchOutput, got %T", output)
	}
	if len(ws.Links) != 1 || ws.Links[0].Title != "Testing" {
		t.Errorf("links not parsed: %+v", ws.Links)
	}
	if ws.Summary == "" || ws.Links[0].URL != "https://go.dev/doc/tutorial/add-a-test" {
		t.Errorf("unexpected parse: %+v", ws)
	}
}

func TestParseToolOutputEmptyContent(t *testing.T) {
	if output := ParseToolOutput("Bash", ResultContent{}, ""); output != nil {
		t.Errorf("empty content should return nil, got %+v", output)
	}
}
