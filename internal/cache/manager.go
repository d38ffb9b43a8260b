package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/transcriptr/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	filesBucket    = "transcriptr_files"
	sessionsBucket = "transcriptr_sessions"
)

// FileRecord is the cached fingerprint of one transcript file. Staleness is
// a mismatch of mtime or size against the file on disk.
type FileRecord struct {
	Path          string   `json:"path"`
	MTimeUnixNano int64    `json:"mtime_unix_nano"`
	Size          int64    `json:"size"`
	MessageCount  int      `json:"message_count"`
	SessionIDs    []string `json:"session_ids,omitempty"`
}

// SessionRecord is the cached per-session metadata used by the TUI and the
// project index without re-parsing transcripts.
type SessionRecord struct {
	ID                       string `json:"id"`
	Summary                  string `json:"summary,omitempty"`
	FirstTimestamp           string `json:"first_timestamp,omitempty"`
	LastTimestamp            string `json:"last_timestamp,omitempty"`
	MessageCount             int    `json:"message_count"`
	FirstUserMessage         string `json:"first_user_message,omitempty"`
	CWD                      string `json:"cwd,omitempty"`
	TotalInputTokens         int    `json:"total_input_tokens,omitempty"`
	TotalOutputTokens        int    `json:"total_output_tokens,omitempty"`
	TotalCacheCreationTokens int    `json:"total_cache_creation_tokens,omitempty"`
	TotalCacheReadTokens     int    `json:"total_cache_read_tokens,omitempty"`
}

// Aggregates summarizes everything in the sessions bucket for the project
// index and `cache info`.
type Aggregates struct {
	SessionCount  int
	MessageCount  int
	TotalTokens   int
	LastTimestamp string
	WorkingDirs   []string
}

// Manager is the transcript metadata cache on an embedded NATS JetStream
// instance with two KV buckets: file fingerprints and session metadata.
// A nil *Manager is valid and means caching is disabled; every method
// no-ops or reports a miss on the nil receiver.
type Manager struct {
	ns       *server.Server
	nc       *nats.Conn
	files    jetstream.KeyValue
	sessions jetstream.KeyValue
}

// New starts the embedded server and opens the KV buckets. dataDir holds
// the JetStream store.
func New(ctx context.Context, dataDir string) (*Manager, error) {
	ns, err := startEmbeddedNATS(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to start cache server: %w", err)
	}

	nc, err := connectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("failed to connect to cache server: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		_ = shutdown(nc, ns)
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	files, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  filesBucket,
		Storage: jetstream.FileStorage,
	})
	if err != nil {
		_ = shutdown(nc, ns)
		return nil, fmt.Errorf("failed to open bucket %s: %w", filesBucket, err)
	}

	sessions, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  sessionsBucket,
		Storage: jetstream.FileStorage,
	})
	if err != nil {
		_ = shutdown(nc, ns)
		return nil, fmt.Errorf("failed to open bucket %s: %w", sessionsBucket, err)
	}

	logger.Debug("Cache ready: %s", dataDir)
	return &Manager{ns: ns, nc: nc, files: files, sessions: sessions}, nil
}

// fileKey hashes the path into a KV-safe key. Paths carry characters the
// bucket key grammar rejects.
func fileKey(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}

// IsFileCached reports whether the file's cached fingerprint matches its
// current mtime and size. Misses on nil manager, unknown files, stat
// failures and stale fingerprints.
func (m *Manager) IsFileCached(ctx context.Context, path string) bool {
	if m == nil {
		return false
	}
	record, ok := m.fileRecord(ctx, path)
	if !ok {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return record.MTimeUnixNano == info.ModTime().UnixNano() && record.Size == info.Size()
}

// MarkFileCached stores the file's current fingerprint.
func (m *Manager) MarkFileCached(ctx context.Context, path string, messageCount int, sessionIDs []string) error {
	if m == nil {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	record := FileRecord{
		Path:          path,
		MTimeUnixNano: info.ModTime().UnixNano(),
		Size:          info.Size(),
		MessageCount:  messageCount,
		SessionIDs:    sessionIDs,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal file record: %w", err)
	}
	if _, err := m.files.Put(ctx, fileKey(path), data); err != nil {
		return fmt.Errorf("failed to store file record: %w", err)
	}
	return nil
}

func (m *Manager) fileRecord(ctx context.Context, path string) (FileRecord, bool) {
	entry, err := m.files.Get(ctx, fileKey(path))
	if err != nil {
		return FileRecord{}, false
	}
	var record FileRecord
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		logger.Warn("corrupt file record for %s: %v", path, err)
		return FileRecord{}, false
	}
	return record, true
}

// CachedSessions returns the session records for a file whose fingerprint
// is still fresh. Misses when the fingerprint is stale or any referenced
// session record is gone, so callers fall back to re-parsing.
func (m *Manager) CachedSessions(ctx context.Context, path string) ([]SessionRecord, bool) {
	if m == nil || !m.IsFileCached(ctx, path) {
		return nil, false
	}
	record, ok := m.fileRecord(ctx, path)
	if !ok {
		return nil, false
	}
	records := make([]SessionRecord, 0, len(record.SessionIDs))
	for _, id := range record.SessionIDs {
		session, ok := m.SessionData(ctx, id)
		if !ok {
			return nil, false
		}
		records = append(records, session)
	}
	return records, true
}

// ModifiedFiles filters paths down to those whose fingerprint is missing or
// stale. With caching disabled every path counts as modified.
func (m *Manager) ModifiedFiles(ctx context.Context, paths []string) []string {
	if m == nil {
		return paths
	}
	var modified []string
	for _, path := range paths {
		if !m.IsFileCached(ctx, path) {
			modified = append(modified, path)
		}
	}
	return modified
}

// SessionData fetches one cached session record.
func (m *Manager) SessionData(ctx context.Context, sessionID string) (SessionRecord, bool) {
	if m == nil || sessionID == "" {
		return SessionRecord{}, false
	}
	entry, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return SessionRecord{}, false
	}
	var record SessionRecord
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		logger.Warn("corrupt session record %s: %v", sessionID, err)
		return SessionRecord{}, false
	}
	return record, true
}

// PutSessionData stores one session record keyed by session id.
func (m *Manager) PutSessionData(ctx context.Context, record SessionRecord) error {
	if m == nil {
		return nil
	}
	if record.ID == "" {
		return errors.New("session record has no id")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}
	if _, err := m.sessions.Put(ctx, record.ID, data); err != nil {
		return fmt.Errorf("failed to store session record: %w", err)
	}
	return nil
}

// Sessions returns every cached session record.
func (m *Manager) Sessions(ctx context.Context) ([]SessionRecord, error) {
	if m == nil {
		return nil, nil
	}
	keys, err := m.sessions.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	records := make([]SessionRecord, 0, len(keys))
	for _, key := range keys {
		if record, ok := m.SessionData(ctx, key); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// ProjectAggregates sums the cached session records.
func (m *Manager) ProjectAggregates(ctx context.Context) (Aggregates, error) {
	if m == nil {
		return Aggregates{}, nil
	}
	records, err := m.Sessions(ctx)
	if err != nil {
		return Aggregates{}, err
	}

	var agg Aggregates
	seenDirs := map[string]bool{}
	for _, record := range records {
		agg.SessionCount++
		agg.MessageCount += record.MessageCount
		agg.TotalTokens += record.TotalInputTokens + record.TotalOutputTokens
		if record.LastTimestamp > agg.LastTimestamp {
			agg.LastTimestamp = record.LastTimestamp
		}
		if record.CWD != "" && !seenDirs[record.CWD] {
			seenDirs[record.CWD] = true
			agg.WorkingDirs = append(agg.WorkingDirs, record.CWD)
		}
	}
	return agg, nil
}

// Clear purges both buckets.
func (m *Manager) Clear(ctx context.Context) error {
	if m == nil {
		return nil
	}
	for _, kv := range []jetstream.KeyValue{m.files, m.sessions} {
		keys, err := kv.Keys(ctx)
		if err != nil {
			if errors.Is(err, jetstream.ErrNoKeysFound) {
				continue
			}
			return fmt.Errorf("failed to list cache keys: %w", err)
		}
		for _, key := range keys {
			if err := kv.Purge(ctx, key); err != nil {
				return fmt.Errorf("failed to purge %s: %w", key, err)
			}
		}
	}
	logger.Info("Cache cleared")
	return nil
}

// Close drains the connection and stops the embedded server.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	return shutdown(m.nc, m.ns)
}
