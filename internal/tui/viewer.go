package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/transcriptr/internal/transcript"
	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

type viewerLoadedMsg struct {
	title string
	items []MessageItem
	err   error
}

// ViewerScreen displays one session's transcript as a scrollable list of
// message items.
type ViewerScreen struct {
	title string
	list  *ScrollList
	err   error
}

func NewViewerScreen() *ViewerScreen {
	return &ViewerScreen{list: NewScrollList(80, 24)}
}

// load parses the session's file and builds the viewer items. Summary
// entries and other sessions sharing the file are filtered out.
func (v *ViewerScreen) load(row *SessionRow) tea.Cmd {
	sessionID := row.ID
	file := row.File
	title := row.Title()
	return func() tea.Msg {
		entries, err := transcript.LoadTranscript(file, "", "")
		if err != nil {
			return viewerLoadedMsg{title: title, err: err}
		}
		entries = transcript.DeduplicateEntries(entries)

		var sessionEntries []transcript.Entry
		for _, entry := range entries {
			if entry.SessionID == sessionID {
				sessionEntries = append(sessionEntries, entry)
			}
		}

		return viewerLoadedMsg{title: title, items: buildViewerItems(sessionEntries)}
	}
}

func (v *ViewerScreen) setContent(title string, items []MessageItem, err error) {
	v.title = title
	v.err = err
	v.list.SetItems(items)
	v.list.SetSelected(-1)
	v.list.SetFocused(true)
	v.list.GotoTop()
	if len(items) > 0 {
		v.list.SetSelected(0)
	}
}

func (v *ViewerScreen) setSize(width, height int) {
	// Items re-render lazily: each caches its last render keyed by width.
	v.list.SetWidth(width)
	v.list.SetHeight(height)
}

// toggleSelected expands or collapses the selected item when it supports it.
func (v *ViewerScreen) toggleSelected() {
	item := v.list.SelectedItem()
	if item == nil {
		return
	}
	if expandable, ok := item.(Expandable); ok {
		expandable.ToggleExpanded()
	}
}

func (v *ViewerScreen) view() string {
	if v.err != nil {
		return theme.Current().S().ErrorText.Render(v.err.Error())
	}
	if len(v.list.Items()) == 0 {
		return theme.Current().S().ListMeta.Render("Empty session.")
	}
	return v.list.View()
}
