package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/mark3labs/transcriptr/internal/cache"
	"github.com/mark3labs/transcriptr/internal/converter"
	"github.com/mark3labs/transcriptr/internal/logger"
	"github.com/mark3labs/transcriptr/internal/transcript"
	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

// SessionRow is one session in the session list.
type SessionRow struct {
	ID               string
	Summary          string
	FirstUserMessage string
	CWD              string
	MessageCount     int
	InputTokens      int
	OutputTokens     int
	LastTimestamp    string
	File             string // source JSONL file
}

// Title is the display label: summary, first user message, or the id.
func (r SessionRow) Title() string {
	if r.Summary != "" {
		return r.Summary
	}
	if r.FirstUserMessage != "" {
		title := strings.Join(strings.Fields(r.FirstUserMessage), " ")
		if len(title) > 60 {
			title = title[:57] + "…"
		}
		return title
	}
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

type sessionsLoadedMsg struct {
	projectDir string
	rows       []SessionRow
	err        error
}

type generateDoneMsg struct {
	path string
	err  error
}

// SessionsScreen lists the sessions of one project.
type SessionsScreen struct {
	projectDir string
	rows       []SessionRow
	cursor     int
	err        error
	loaded     bool
}

func NewSessionsScreen() *SessionsScreen {
	return &SessionsScreen{}
}

// load reads session metadata for every transcript in the project. Fresh
// cache fingerprints serve from the cache; everything else is parsed and
// written back. force bypasses the cache entirely.
func (s *SessionsScreen) load(ctx context.Context, projectDir string, mgr *cache.Manager, force bool) tea.Cmd {
	return func() tea.Msg {
		files, err := transcript.ListSessionFiles(projectDir)
		if err != nil {
			return sessionsLoadedMsg{projectDir: projectDir, err: err}
		}

		var rows []SessionRow
		for _, file := range files {
			if !force {
				if records, ok := mgr.CachedSessions(ctx, file); ok {
					for _, record := range records {
						rows = append(rows, SessionRow{
							ID:               record.ID,
							Summary:          record.Summary,
							FirstUserMessage: record.FirstUserMessage,
							CWD:              record.CWD,
							MessageCount:     record.MessageCount,
							InputTokens:      record.TotalInputTokens,
							OutputTokens:     record.TotalOutputTokens,
							LastTimestamp:    record.LastTimestamp,
							File:             file,
						})
					}
					continue
				}
			}

			entries, err := transcript.LoadTranscript(file, "", "")
			if err != nil {
				logger.Warn("Skipping %s: %v", file, err)
				continue
			}
			entries = transcript.DeduplicateEntries(entries)
			infos := converter.SessionInfos(entries)

			var sessionIDs []string
			for _, info := range infos {
				sessionIDs = append(sessionIDs, info.ID)
				rows = append(rows, SessionRow{
					ID:               info.ID,
					Summary:          info.Summary,
					FirstUserMessage: info.FirstUserMessage,
					CWD:              info.CWD,
					MessageCount:     info.MessageCount,
					InputTokens:      info.TotalInputTokens,
					OutputTokens:     info.TotalOutputTokens,
					LastTimestamp:    info.LastTimestamp,
					File:             file,
				})
				if err := mgr.PutSessionData(ctx, cache.SessionRecord{
					ID:                       info.ID,
					Summary:                  info.Summary,
					FirstTimestamp:           info.FirstTimestamp,
					LastTimestamp:            info.LastTimestamp,
					MessageCount:             info.MessageCount,
					FirstUserMessage:         info.FirstUserMessage,
					CWD:                      info.CWD,
					TotalInputTokens:         info.TotalInputTokens,
					TotalOutputTokens:        info.TotalOutputTokens,
					TotalCacheCreationTokens: info.TotalCacheCreationTokens,
					TotalCacheReadTokens:     info.TotalCacheReadTokens,
				}); err != nil {
					logger.Warn("Failed to cache session %s: %v", info.ID, err)
				}
			}
			if err := mgr.MarkFileCached(ctx, file, len(entries), sessionIDs); err != nil {
				logger.Warn("Failed to cache %s: %v", file, err)
			}
		}

		sort.Slice(rows, func(i, j int) bool {
			return rows[i].LastTimestamp > rows[j].LastTimestamp
		})
		return sessionsLoadedMsg{projectDir: projectDir, rows: rows}
	}
}

func (s *SessionsScreen) setRows(projectDir string, rows []SessionRow, err error) {
	s.projectDir = projectDir
	s.rows = rows
	s.err = err
	s.loaded = true
	if s.cursor >= len(rows) {
		s.cursor = len(rows) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *SessionsScreen) moveCursor(delta int) {
	if len(s.rows) == 0 {
		return
	}
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= len(s.rows) {
		s.cursor = len(s.rows) - 1
	}
}

func (s *SessionsScreen) selected() *SessionRow {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return &s.rows[s.cursor]
}

func (s *SessionsScreen) title() string {
	if s.projectDir == "" {
		return "sessions"
	}
	return converter.ProjectDisplayName(s.projectDir)
}

// view renders the session list. Each session takes two lines: title, then
// message/token/cwd metadata.
func (s *SessionsScreen) view(width, height int) string {
	styles := theme.Current().S()

	if s.err != nil {
		return styles.ErrorText.Render(s.err.Error())
	}
	if !s.loaded {
		return styles.ListMeta.Render("Loading sessions…")
	}
	if len(s.rows) == 0 {
		return styles.ListMeta.Render("No sessions found.")
	}

	rowsVisible := height / 2
	if rowsVisible < 1 {
		rowsVisible = 1
	}
	start := 0
	if s.cursor >= rowsVisible {
		start = s.cursor - rowsVisible + 1
	}

	var out []string
	for i := start; i < len(s.rows) && i-start < rowsVisible; i++ {
		row := s.rows[i]
		meta := fmt.Sprintf("%d messages · %d in / %d out tokens", row.MessageCount, row.InputTokens, row.OutputTokens)
		if row.CWD != "" {
			meta += " · " + row.CWD
		}
		title := row.Title()
		metaLine := "  " + styles.ListMeta.Render(meta)
		if i == s.cursor {
			out = append(out, styles.ListSelected.Width(width).Render(title))
		} else {
			out = append(out, styles.ListItem.Width(width).Render(title))
		}
		out = append(out, metaLine)
	}
	return joinLines(out)
}

// generateHTML converts the session's source file to HTML next to it.
func generateHTML(ctx context.Context, file string, mgr *cache.Manager) tea.Cmd {
	return func() tea.Msg {
		path, _, err := converter.ConvertJSONL(ctx, file, converter.Options{
			Format: converter.FormatHTML,
			Cache:  mgr,
		})
		return generateDoneMsg{path: path, err: err}
	}
}

// openInEditor opens the session's JSONL file in $EDITOR.
func openInEditor(file string) tea.Cmd {
	cmd, err := editor.Command("transcriptr", filepath.Clean(file))
	if err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("no editor available: %v", err)}
		}
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}
