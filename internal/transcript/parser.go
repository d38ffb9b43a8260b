package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/transcriptr/internal/logger"
)

// Internal entry types that are never rendered and skipped without a warning.
var silentEntryTypes = map[string]bool{
	"file-history-snapshot": true, // internal file backup metadata
	"progress":              true, // real-time progress updates
}

var renderedEntryTypes = map[string]bool{
	"user":            true,
	"assistant":       true,
	"summary":         true,
	"system":          true,
	"queue-operation": true,
}

// scannerBufferSize bounds a single JSONL line; transcript lines can carry
// whole file contents and base64 images.
const scannerBufferSize = 64 * 1024 * 1024

// LoadTranscript loads and parses one session JSONL file. Malformed lines
// are logged with their line number and skipped, never fatal. Sub-agent
// files referenced via agentId are loaded recursively and spliced in after
// the first entry that references them.
func LoadTranscript(path, fromDate, toDate string) ([]Entry, error) {
	entries, err := loadTranscriptGuarded(path, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return FilterByDate(entries, fromDate, toDate)
}

func loadTranscriptGuarded(path string, loaded map[string]bool) ([]Entry, error) {
	if loaded[path] {
		return nil, nil
	}
	loaded[path] = true

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// The file may have been removed between listing and open by a
			// concurrent session cleanup.
			logger.Warn("transcript file not found (may have been deleted): %s", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	agentIDs := map[string]bool{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), scannerBufferSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			logger.Warn("line %d of %s: JSON decode error: %v", lineNo, path, err)
			continue
		}

		// agentId can appear at the top level or nested in toolUseResult;
		// normalize to the top level so splicing sees it either way.
		if entry.AgentID == "" && len(entry.ToolUseResult) > 0 {
			var nested struct {
				AgentID string `json:"agentId"`
			}
			if err := json.Unmarshal(entry.ToolUseResult, &nested); err == nil && nested.AgentID != "" {
				entry.AgentID = nested.AgentID
			}
		}
		if entry.AgentID != "" {
			agentIDs[entry.AgentID] = true
		}

		switch {
		case renderedEntryTypes[entry.Type]:
			entries = append(entries, entry)
		case silentEntryTypes[entry.Type]:
		default:
			display := line
			if len(display) > 1000 {
				display = display[:1000] + "..."
			}
			logger.Warn("line %d of %s is not a recognised message type: %s", lineNo, path, display)
		}
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}

	if len(agentIDs) == 0 {
		return entries, nil
	}

	// Load referenced agent files: legacy location is the session directory,
	// newer sessions keep them under <session>/subagents/.
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	agentEntries := map[string][]Entry{}
	for agentID := range agentIDs {
		agentFile := filepath.Join(dir, "agent-"+agentID+".jsonl")
		if agentFile == path {
			continue
		}
		if _, err := os.Stat(agentFile); err != nil {
			sub := filepath.Join(dir, stem, "subagents", "agent-"+agentID+".jsonl")
			if _, err := os.Stat(sub); err != nil {
				continue
			}
			agentFile = sub
		}
		logger.Debug("loading agent file %s", agentFile)
		loadedEntries, err := loadTranscriptGuarded(agentFile, loaded)
		if err != nil {
			logger.Warn("failed to load agent file %s: %v", agentFile, err)
			continue
		}
		agentEntries[agentID] = loadedEntries
	}

	if len(agentEntries) == 0 {
		return entries, nil
	}

	// Splice agent entries after the first entry referencing them.
	spliced := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		spliced = append(spliced, entry)
		if entry.Type == "user" && entry.AgentID != "" {
			if sub, ok := agentEntries[entry.AgentID]; ok {
				spliced = append(spliced, sub...)
				delete(agentEntries, entry.AgentID)
			}
		}
	}
	return spliced, nil
}

// LoadDirectoryTranscripts loads every session JSONL file in a directory
// (agent files are pulled in through their referencing sessions, not listed
// directly) and merges them in timestamp order.
func LoadDirectoryTranscripts(dir, fromDate, toDate string) ([]Entry, error) {
	files, err := ListSessionFiles(dir)
	if err != nil {
		return nil, err
	}

	var all []Entry
	for _, file := range files {
		entries, err := LoadTranscript(file, fromDate, toDate)
		if err != nil {
			logger.Warn("skipping %s: %v", file, err)
			continue
		}
		all = append(all, entries...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp < all[j].Timestamp
	})
	return all, nil
}

// ListSessionFiles returns the non-agent *.jsonl files of a project
// directory in name order.
func ListSessionFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var files []string
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), "agent-") {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}

type dedupKey struct {
	entryType  string
	timestamp  string
	isMeta     bool
	sessionID  string
	contentKey string
}

// DeduplicateEntries removes duplicate entries keyed on (type, timestamp,
// isMeta, sessionId, content key). Two duplicate classes exist: version
// stutter (same entry logged twice across a version upgrade, same message id
// or tool_use_id) and user-text branch artifacts (same timestamp, different
// uuids). Concurrent tool results share a timestamp but differ in
// tool_use_id, so they survive. For user text duplicates the entry with more
// content items replaces the earlier one in place.
func DeduplicateEntries(entries []Entry) []Entry {
	seen := map[dedupKey]int{}
	var out []Entry

	for _, entry := range entries {
		entryType := entry.Type
		if entry.Type == "system" {
			level := entry.Level
			if level == "" {
				level = "info"
			}
			entryType = "system-" + level
		}

		contentKey := ""
		isUserText := false
		switch entry.Type {
		case "assistant":
			if entry.Message != nil {
				contentKey = entry.Message.ID
			}
		case "user":
			isUserText = true
			if entry.Message != nil {
				for _, item := range entry.Message.Content {
					if item.Type == "tool_result" {
						contentKey = item.ToolUseID
						isUserText = false
						break
					}
				}
			}
		case "summary":
			contentKey = entry.LeafUUID
		}

		key := dedupKey{
			entryType:  entryType,
			timestamp:  entry.Timestamp,
			isMeta:     entry.IsMeta,
			sessionID:  entry.SessionID,
			contentKey: contentKey,
		}

		if idx, ok := seen[key]; ok {
			// Keep the richer of two user text duplicates in place.
			if isUserText && entry.Message != nil {
				existing := out[idx]
				if existing.Message == nil || len(entry.Message.Content) > len(existing.Message.Content) {
					out[idx] = entry
				}
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, entry)
	}
	return out
}

var daysAgoPattern = regexp.MustCompile(`^(\d+) days? ago$`)

// FilterByDate keeps entries whose timestamps fall inside the given range.
// Dates are interpreted in UTC to match transcript timestamps. Accepts
// "today", "yesterday", "N days ago", YYYY-MM-DD and RFC3339. Relative dates
// snap to the start (from) or end (to) of the day. Summaries carry no
// timestamp and always pass through.
func FilterByDate(entries []Entry, fromDate, toDate string) ([]Entry, error) {
	if fromDate == "" && toDate == "" {
		return entries, nil
	}

	var fromTime, toTime time.Time
	var err error
	if fromDate != "" {
		if fromTime, err = parseDateSpec(fromDate, false); err != nil {
			return nil, fmt.Errorf("could not parse from-date %q: %w", fromDate, err)
		}
	}
	if toDate != "" {
		if toTime, err = parseDateSpec(toDate, true); err != nil {
			return nil, fmt.Errorf("could not parse to-date %q: %w", toDate, err)
		}
	}

	var out []Entry
	for _, entry := range entries {
		if entry.Type == "summary" {
			out = append(out, entry)
			continue
		}
		ts := ParseTimestamp(entry.Timestamp)
		if ts.IsZero() {
			continue
		}
		ts = ts.UTC()
		if !fromTime.IsZero() && ts.Before(fromTime) {
			continue
		}
		if !toTime.IsZero() && ts.After(toTime) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// parseDateSpec parses a date expression in UTC. Day-granular expressions
// snap to day start or day end depending on which boundary they describe.
func parseDateSpec(spec string, endOfDay bool) (time.Time, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var day time.Time
	switch {
	case spec == "today":
		day = today
	case spec == "yesterday":
		day = today.AddDate(0, 0, -1)
	case daysAgoPattern.MatchString(spec):
		n, _ := strconv.Atoi(daysAgoPattern.FindStringSubmatch(spec)[1])
		day = today.AddDate(0, 0, -n)
	default:
		if t, err := time.Parse("2006-01-02", spec); err == nil {
			day = t
			break
		}
		t, err := time.Parse(time.RFC3339, spec)
		if err != nil {
			return time.Time{}, err
		}
		// An exact timestamp is used as-is, no day snapping.
		return t.UTC(), nil
	}

	if endOfDay {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}
