package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/transcriptr/internal/cache"
	"github.com/mark3labs/transcriptr/internal/converter"
	"github.com/mark3labs/transcriptr/internal/transcript"
	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

// ProjectRow is one project directory in the selector.
type ProjectRow struct {
	Name         string // display name decoded from the directory name
	Dir          string // absolute project directory
	Files        int    // transcript file count
	Sessions     int    // session count (from cache when fresh, else file count)
	LastModified time.Time
}

type projectsLoadedMsg struct {
	rows []ProjectRow
	err  error
}

// ProjectsScreen is the project selector.
type ProjectsScreen struct {
	rows   []ProjectRow
	cursor int
	err    error
	loaded bool
}

func NewProjectsScreen() *ProjectsScreen {
	return &ProjectsScreen{}
}

// load scans the projects root for directories containing transcripts.
func (p *ProjectsScreen) load(ctx context.Context, root string, mgr *cache.Manager) tea.Cmd {
	return func() tea.Msg {
		dirEntries, err := os.ReadDir(root)
		if err != nil {
			return projectsLoadedMsg{err: fmt.Errorf("failed to read projects directory: %w", err)}
		}

		var rows []ProjectRow
		for _, dirEntry := range dirEntries {
			if !dirEntry.IsDir() {
				continue
			}
			projectDir := filepath.Join(root, dirEntry.Name())
			files, err := transcript.ListSessionFiles(projectDir)
			if err != nil || len(files) == 0 {
				continue
			}

			row := ProjectRow{
				Name: converter.ProjectDisplayName(projectDir),
				Dir:  projectDir,
			}
			for _, file := range files {
				row.Files++
				if info, err := os.Stat(file); err == nil && info.ModTime().After(row.LastModified) {
					row.LastModified = info.ModTime()
				}
				if records, ok := mgr.CachedSessions(ctx, file); ok {
					row.Sessions += len(records)
				} else {
					// Uncached files count as one session; refined
					// once the session list parses them.
					row.Sessions++
				}
			}
			rows = append(rows, row)
		}

		sort.Slice(rows, func(i, j int) bool {
			return rows[i].LastModified.After(rows[j].LastModified)
		})
		return projectsLoadedMsg{rows: rows}
	}
}

func (p *ProjectsScreen) setRows(rows []ProjectRow, err error) {
	p.rows = rows
	p.err = err
	p.loaded = true
	if p.cursor >= len(rows) {
		p.cursor = len(rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *ProjectsScreen) moveCursor(delta int) {
	if len(p.rows) == 0 {
		return
	}
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
}

func (p *ProjectsScreen) selected() *ProjectRow {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return nil
	}
	return &p.rows[p.cursor]
}

// view renders the project list, keeping the cursor within the window.
func (p *ProjectsScreen) view(width, height int) string {
	s := theme.Current().S()

	if p.err != nil {
		return s.ErrorText.Render(p.err.Error())
	}
	if !p.loaded {
		return s.ListMeta.Render("Scanning projects…")
	}
	if len(p.rows) == 0 {
		return s.ListMeta.Render("No projects with transcripts found.")
	}

	start := 0
	if p.cursor >= height {
		start = p.cursor - height + 1
	}

	var out []string
	for i := start; i < len(p.rows) && i-start < height; i++ {
		row := p.rows[i]
		meta := fmt.Sprintf("%d sessions · %s", row.Sessions, row.LastModified.Format("2006-01-02 15:04"))
		line := row.Name + "  " + s.ListMeta.Render(meta)
		if i == p.cursor {
			out = append(out, s.ListSelected.Width(width).Render(line))
		} else {
			out = append(out, s.ListItem.Width(width).Render(line))
		}
	}
	return joinLines(out)
}

func joinLines(lines []string) string {
	out := ""
	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}
