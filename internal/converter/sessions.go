package converter

import (
	"fmt"
	"strings"

	"github.com/mark3labs/transcriptr/internal/transcript"
)

// SessionInfo is the aggregated metadata of one session inside a transcript
// set: identity, summary, preview, time range and token totals.
type SessionInfo struct {
	ID                       string
	Summary                  string
	FirstTimestamp           string
	LastTimestamp            string
	MessageCount             int
	FirstUserMessage         string
	CWD                      string
	TotalInputTokens         int
	TotalOutputTokens        int
	TotalCacheCreationTokens int
	TotalCacheReadTokens     int
}

// TokenSummary formats the token totals for display, omitting zero buckets.
// Empty when the session recorded no usage at all.
func (s SessionInfo) TokenSummary() string {
	if s.TotalInputTokens == 0 && s.TotalOutputTokens == 0 {
		return ""
	}
	var parts []string
	if s.TotalInputTokens > 0 {
		parts = append(parts, fmt.Sprintf("Input: %d", s.TotalInputTokens))
	}
	if s.TotalOutputTokens > 0 {
		parts = append(parts, fmt.Sprintf("Output: %d", s.TotalOutputTokens))
	}
	if s.TotalCacheCreationTokens > 0 {
		parts = append(parts, fmt.Sprintf("Cache Creation: %d", s.TotalCacheCreationTokens))
	}
	if s.TotalCacheReadTokens > 0 {
		parts = append(parts, fmt.Sprintf("Cache Read: %d", s.TotalCacheReadTokens))
	}
	return "Token usage – " + strings.Join(parts, " | ")
}

// Title is the session header label: summary plus short id when a summary
// exists, short id alone otherwise.
func (s SessionInfo) Title() string {
	short := s.ID
	if len(short) > 8 {
		short = short[:8]
	}
	if s.Summary != "" {
		return s.Summary + " • " + short
	}
	return short
}

// sessionSummaries maps sessionId to summary text. Summary entries point at
// a leaf message uuid, not a session, so the link goes leafUuid → message →
// sessionId. Assistant-owned uuids win over other entry types because
// summaries are generated from the assistant's last message; non-assistant
// matches only fill sessions that have no summary yet.
func sessionSummaries(entries []transcript.Entry) map[string]string {
	uuidToSession := map[string]string{}
	uuidToSessionBackup := map[string]string{}

	for _, entry := range entries {
		if entry.UUID == "" || entry.SessionID == "" {
			continue
		}
		if entry.Type == "assistant" {
			uuidToSession[entry.UUID] = entry.SessionID
		} else {
			uuidToSessionBackup[entry.UUID] = entry.SessionID
		}
	}

	summaries := map[string]string{}
	for _, entry := range entries {
		if entry.Type != "summary" || entry.LeafUUID == "" {
			continue
		}
		if sessionID, ok := uuidToSession[entry.LeafUUID]; ok {
			summaries[sessionID] = entry.Summary
		} else if sessionID, ok := uuidToSessionBackup[entry.LeafUUID]; ok {
			if _, exists := summaries[sessionID]; !exists {
				summaries[sessionID] = entry.Summary
			}
		}
	}
	return summaries
}

// sessionCollection is the outcome of the session pass: per-session metadata
// in first-seen order, plus the set of assistant message uuids that should
// display token usage (first occurrence of each requestId).
type sessionCollection struct {
	sessions   map[string]*SessionInfo
	order      []string
	showTokens map[string]bool
}

// Ordered returns the sessions in chronological first-seen order.
func (c sessionCollection) Ordered() []SessionInfo {
	out := make([]SessionInfo, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.sessions[id])
	}
	return out
}

// SessionInfos aggregates per-session metadata in first-seen order.
func SessionInfos(entries []transcript.Entry) []SessionInfo {
	return collectSessions(entries).Ordered()
}

// collectSessions walks renderable entries and aggregates per-session
// metadata. Retried API calls repeat the requestId with identical usage, so
// tokens count once per requestId and only the first carrier shows them.
func collectSessions(entries []transcript.Entry) sessionCollection {
	summaries := sessionSummaries(entries)

	c := sessionCollection{
		sessions:   map[string]*SessionInfo{},
		showTokens: map[string]bool{},
	}
	seenRequestIDs := map[string]bool{}

	for _, entry := range entries {
		if entry.Type == "summary" || entry.Type == "system" {
			continue
		}

		sessionID := entry.SessionID
		if sessionID == "" {
			sessionID = "unknown"
		}
		text := entry.Message.TextContent()

		info, ok := c.sessions[sessionID]
		if !ok {
			info = &SessionInfo{
				ID:             sessionID,
				Summary:        summaries[sessionID],
				FirstTimestamp: entry.Timestamp,
				LastTimestamp:  entry.Timestamp,
				CWD:            entry.CWD,
			}
			c.sessions[sessionID] = info
			c.order = append(c.order, sessionID)
		}

		if info.FirstUserMessage == "" && entry.Type == "user" && usableAsSessionStarter(text) {
			info.FirstUserMessage = sessionPreview(text)
		}
		if info.CWD == "" {
			info.CWD = entry.CWD
		}

		info.MessageCount++
		if entry.Timestamp != "" {
			info.LastTimestamp = entry.Timestamp
		}

		if entry.Type == "assistant" && entry.Message != nil && entry.Message.Usage != nil {
			requestID := entry.RequestID
			if requestID == "" || seenRequestIDs[requestID] {
				continue
			}
			seenRequestIDs[requestID] = true
			c.showTokens[entry.UUID] = true

			usage := entry.Message.Usage
			info.TotalInputTokens += usage.InputTokens
			info.TotalOutputTokens += usage.OutputTokens
			info.TotalCacheCreationTokens += usage.CacheCreationInputTokens
			info.TotalCacheReadTokens += usage.CacheReadInputTokens
		}
	}
	return c
}
