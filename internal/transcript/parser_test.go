package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSessionFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTranscriptSkipsMalformedLines(t *testing.T) {
	content := `{"type":"user","uuid":"u1","timestamp":"2025-06-14T10:00:00Z","message":{"role":"user","content":"hello"}}
{not valid json at all
{"type":"file-history-snapshot","messageId":"x"}
{"type":"some-unknown-type","uuid":"u2"}

{"type":"assistant","uuid":"u3","timestamp":"2025-06-14T10:00:05Z","message":{"role":"assistant","id":"msg_1","content":[{"type":"text","text":"hi"}]}}
`
	path := writeSessionFile(t, t.TempDir(), "session.jsonl", content)

	entries, err := LoadTranscript(path, "", "")
	if err != nil {
		t.Fatalf("LoadTranscript() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != "user" || entries[1].Type != "assistant" {
		t.Errorf("unexpected entry types: %s, %s", entries[0].Type, entries[1].Type)
	}
}

func TestLoadTranscriptMissingFile(t *testing.T) {
	entries, err := LoadTranscript(filepath.Join(t.TempDir(), "gone.jsonl"), "", "")
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestLoadTranscriptSplicesAgentFile(t *testing.T) {
	dir := t.TempDir()

	writeSessionFile(t, dir, "agent-abc123.jsonl",
		`{"type":"assistant","uuid":"a1","timestamp":"2025-06-14T10:00:02Z","isSidechain":true,"message":{"role":"assistant","id":"msg_sub","content":[{"type":"text","text":"sub work"}]}}
`)
	session := writeSessionFile(t, dir, "session.jsonl",
		`{"type":"user","uuid":"u1","timestamp":"2025-06-14T10:00:00Z","message":{"role":"user","content":"start"}}
{"type":"user","uuid":"u2","timestamp":"2025-06-14T10:00:01Z","toolUseResult":{"agentId":"abc123"},"message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu1","content":"done"}]}}
{"type":"user","uuid":"u3","timestamp":"2025-06-14T10:00:03Z","message":{"role":"user","content":"after"}}
`)

	entries, err := LoadTranscript(session, "", "")
	if err != nil {
		t.Fatalf("LoadTranscript() error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries after splicing, got %d", len(entries))
	}
	// Agent entries land right after the referencing user entry.
	if entries[2].UUID != "a1" {
		t.Errorf("agent entry should splice at index 2, got uuid %q", entries[2].UUID)
	}
	if entries[3].UUID != "u3" {
		t.Errorf("trailing entry displaced, got uuid %q", entries[3].UUID)
	}
}

func TestLoadTranscriptSubagentsDirectory(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "session", "subagents")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSessionFile(t, subDir, "agent-xyz.jsonl",
		`{"type":"assistant","uuid":"a1","timestamp":"2025-06-14T10:00:02Z","message":{"role":"assistant","id":"m1","content":[{"type":"text","text":"nested"}]}}
`)
	session := writeSessionFile(t, dir, "session.jsonl",
		`{"type":"user","uuid":"u1","timestamp":"2025-06-14T10:00:00Z","agentId":"xyz","message":{"role":"user","content":"ref"}}
`)

	entries, err := LoadTranscript(session, "", "")
	if err != nil {
		t.Fatalf("LoadTranscript() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].UUID != "a1" {
		t.Errorf("expected spliced agent entry, got %q", entries[1].UUID)
	}
}

func TestListSessionFiles(t *testing.T) {
	dir := t.TempDir()
	writeSessionFile(t, dir, "b-session.jsonl", "")
	writeSessionFile(t, dir, "a-session.jsonl", "")
	writeSessionFile(t, dir, "agent-123.jsonl", "")
	writeSessionFile(t, dir, "notes.txt", "")

	files, err := ListSessionFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 session files, got %v", files)
	}
	if filepath.Base(files[0]) != "a-session.jsonl" || filepath.Base(files[1]) != "b-session.jsonl" {
		t.Errorf("files not in name order: %v", files)
	}
}

func TestDeduplicateEntries(t *testing.T) {
	ts := "2025-06-14T10:00:00Z"

	t.Run("assistant version stutter", func(t *testing.T) {
		entries := []Entry{
			{Type: "assistant", Timestamp: ts, SessionID: "s1", Message: &Message{ID: "msg_1"}},
			{Type: "assistant", Timestamp: ts, SessionID: "s1", Message: &Message{ID: "msg_1"}},
		}
		if got := DeduplicateEntries(entries); len(got) != 1 {
			t.Errorf("expected 1 entry, got %d", len(got))
		}
	})

	t.Run("concurrent tool results survive", func(t *testing.T) {
		entries := []Entry{
			{Type: "user", Timestamp: ts, SessionID: "s1", Message: &Message{
				Content: ContentItems{{Type: "tool_result", ToolUseID: "tu1"}}}},
			{Type: "user", Timestamp: ts, SessionID: "s1", Message: &Message{
				Content: ContentItems{{Type: "tool_result", ToolUseID: "tu2"}}}},
		}
		if got := DeduplicateEntries(entries); len(got) != 2 {
			t.Errorf("tool results with distinct ids must both survive, got %d", len(got))
		}
	})

	t.Run("richer user text replaces in place", func(t *testing.T) {
		entries := []Entry{
			{Type: "user", Timestamp: ts, SessionID: "s1", UUID: "lean", Message: &Message{
				Content: ContentItems{{Type: "text", Text: "hello"}}}},
			{Type: "user", Timestamp: ts, SessionID: "s1", UUID: "rich", Message: &Message{
				Content: ContentItems{
					{Type: "text", Text: "hello"},
					{Type: "image", Source: &ImageSource{MediaType: "image/png"}},
				}}},
		}
		got := DeduplicateEntries(entries)
		if len(got) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(got))
		}
		if got[0].UUID != "rich" {
			t.Errorf("richer duplicate should win, got %q", got[0].UUID)
		}
	})

	t.Run("system levels are distinct", func(t *testing.T) {
		entries := []Entry{
			{Type: "system", Timestamp: ts, SessionID: "s1", Level: "info"},
			{Type: "system", Timestamp: ts, SessionID: "s1", Level: "warning"},
		}
		if got := DeduplicateEntries(entries); len(got) != 2 {
			t.Errorf("different system levels must both survive, got %d", len(got))
		}
	})
}

func TestFilterByDate(t *testing.T) {
	entries := []Entry{
		{Type: "user", UUID: "early", Timestamp: "2025-06-13T23:59:59Z"},
		{Type: "user", UUID: "inside", Timestamp: "2025-06-14T12:00:00Z"},
		{Type: "user", UUID: "edge", Timestamp: "2025-06-14T23:59:59Z"},
		{Type: "user", UUID: "late", Timestamp: "2025-06-15T00:00:00Z"},
		{Type: "summary", UUID: "sum", Summary: "keeps through"},
	}

	got, err := FilterByDate(entries, "2025-06-14", "2025-06-14")
	if err != nil {
		t.Fatal(err)
	}

	var uuids []string
	for _, e := range got {
		uuids = append(uuids, e.UUID)
	}
	want := []string{"inside", "edge", "sum"}
	if len(uuids) != len(want) {
		t.Fatalf("expected %v, got %v", want, uuids)
	}
	for i := range want {
		if uuids[i] != want[i] {
			t.Errorf("expected %v, got %v", want, uuids)
			break
		}
	}
}

func TestFilterByDateInvalidSpec(t *testing.T) {
	if _, err := FilterByDate([]Entry{}, "not-a-date", ""); err == nil {
		t.Error("expected an error for an unparseable date")
	}
}

func TestFilterByDateEmptyRangePassesThrough(t *testing.T) {
	entries := []Entry{{Type: "user", Timestamp: "bogus timestamp"}}
	got, err := FilterByDate(entries, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("no range means no filtering, got %d entries", len(got))
	}
}

func TestParseDateSpec(t *testing.T) {
	from, err := parseDateSpec("2025-06-14", false)
	if err != nil {
		t.Fatal(err)
	}
	if !from.Equal(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from-date should snap to day start, got %v", from)
	}

	to, err := parseDateSpec("2025-06-14", true)
	if err != nil {
		t.Fatal(err)
	}
	if !to.Equal(time.Date(2025, 6, 14, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)) {
		t.Errorf("to-date should snap to day end, got %v", to)
	}

	exact, err := parseDateSpec("2025-06-14T08:30:00Z", true)
	if err != nil {
		t.Fatal(err)
	}
	if !exact.Equal(time.Date(2025, 6, 14, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("exact timestamps must not snap, got %v", exact)
	}

	today, err := parseDateSpec("0 days ago", false)
	if err != nil {
		t.Fatal(err)
	}
	if today.Hour() != 0 || today.Minute() != 0 {
		t.Errorf("relative days should be day-aligned, got %v", today)
	}
}
