package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// touch moves the file's mtime forward without changing its content, the
// shape of an in-place rewrite the fingerprint must treat as stale.
func touch(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestIsFileCachedFingerprint(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	path := writeTempFile(t, "session.jsonl", "{\"type\":\"user\"}\n")

	if m.IsFileCached(ctx, path) {
		t.Error("unknown file must not report cached")
	}

	if err := m.MarkFileCached(ctx, path, 3, []string{"s1"}); err != nil {
		t.Fatalf("MarkFileCached: %v", err)
	}
	if !m.IsFileCached(ctx, path) {
		t.Error("freshly marked file should report cached")
	}

	touch(t, path)
	if m.IsFileCached(ctx, path) {
		t.Error("mtime change must invalidate the fingerprint")
	}

	if err := m.MarkFileCached(ctx, path, 3, []string{"s1"}); err != nil {
		t.Fatalf("MarkFileCached: %v", err)
	}
	if err := os.WriteFile(path, []byte("{\"type\":\"user\"}\n{\"type\":\"assistant\"}\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if m.IsFileCached(ctx, path) {
		t.Error("size change must invalidate the fingerprint")
	}

	if m.IsFileCached(ctx, filepath.Join(t.TempDir(), "gone.jsonl")) {
		t.Error("missing file must not report cached")
	}
}

func TestCachedSessions(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	path := writeTempFile(t, "session.jsonl", "{\"type\":\"user\"}\n")

	for _, record := range []SessionRecord{
		{ID: "s1", Summary: "Fix fetch retries", MessageCount: 4},
		{ID: "s2", Summary: "Add config docs", MessageCount: 2},
	} {
		if err := m.PutSessionData(ctx, record); err != nil {
			t.Fatalf("PutSessionData(%s): %v", record.ID, err)
		}
	}
	if err := m.MarkFileCached(ctx, path, 6, []string{"s1", "s2"}); err != nil {
		t.Fatalf("MarkFileCached: %v", err)
	}

	records, ok := m.CachedSessions(ctx, path)
	if !ok {
		t.Fatal("expected a cache hit for a fresh fingerprint")
	}
	if len(records) != 2 || records[0].ID != "s1" || records[1].ID != "s2" {
		t.Errorf("unexpected session records: %+v", records)
	}
	if records[0].Summary != "Fix fetch retries" || records[0].MessageCount != 4 {
		t.Errorf("session record lost fields: %+v", records[0])
	}

	touch(t, path)
	if _, ok := m.CachedSessions(ctx, path); ok {
		t.Error("stale fingerprint must miss so the caller re-parses")
	}
}

func TestCachedSessionsMissingRecord(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	path := writeTempFile(t, "session.jsonl", "{\"type\":\"user\"}\n")

	// Fingerprint references a session that was never stored.
	if err := m.MarkFileCached(ctx, path, 1, []string{"absent"}); err != nil {
		t.Fatalf("MarkFileCached: %v", err)
	}
	if _, ok := m.CachedSessions(ctx, path); ok {
		t.Error("a missing session record must turn the hit into a miss")
	}
}

func TestModifiedFiles(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	cached := writeTempFile(t, "cached.jsonl", "{\"type\":\"user\"}\n")
	fresh := writeTempFile(t, "fresh.jsonl", "{\"type\":\"user\"}\n")

	if err := m.MarkFileCached(ctx, cached, 1, nil); err != nil {
		t.Fatalf("MarkFileCached: %v", err)
	}

	got := m.ModifiedFiles(ctx, []string{cached, fresh})
	if len(got) != 1 || got[0] != fresh {
		t.Errorf("ModifiedFiles = %v, want only %q", got, fresh)
	}

	touch(t, cached)
	got = m.ModifiedFiles(ctx, []string{cached, fresh})
	if len(got) != 2 {
		t.Errorf("after touching the cached file both should be modified, got %v", got)
	}
}

func TestClear(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	path := writeTempFile(t, "session.jsonl", "{\"type\":\"user\"}\n")

	if err := m.PutSessionData(ctx, SessionRecord{ID: "s1", MessageCount: 1}); err != nil {
		t.Fatalf("PutSessionData: %v", err)
	}
	if err := m.MarkFileCached(ctx, path, 1, []string{"s1"}); err != nil {
		t.Fatalf("MarkFileCached: %v", err)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.IsFileCached(ctx, path) {
		t.Error("file fingerprint should be gone after Clear")
	}
	if _, ok := m.SessionData(ctx, "s1"); ok {
		t.Error("session record should be gone after Clear")
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	ctx := context.Background()

	if m.IsFileCached(ctx, "/tmp/anything.jsonl") {
		t.Error("nil manager must report a miss")
	}
	if err := m.MarkFileCached(ctx, "/tmp/anything.jsonl", 1, nil); err != nil {
		t.Errorf("nil MarkFileCached: %v", err)
	}
	if _, ok := m.CachedSessions(ctx, "/tmp/anything.jsonl"); ok {
		t.Error("nil manager must miss on CachedSessions")
	}
	paths := []string{"/a.jsonl", "/b.jsonl"}
	if got := m.ModifiedFiles(ctx, paths); len(got) != len(paths) {
		t.Errorf("nil manager must treat every path as modified, got %v", got)
	}
	if err := m.PutSessionData(ctx, SessionRecord{ID: "s1"}); err != nil {
		t.Errorf("nil PutSessionData: %v", err)
	}
	if agg, err := m.ProjectAggregates(ctx); err != nil || agg.SessionCount != 0 {
		t.Errorf("nil ProjectAggregates = %+v, %v", agg, err)
	}
	if err := m.Clear(ctx); err != nil {
		t.Errorf("nil Clear: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
