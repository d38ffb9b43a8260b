package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

// MessageItem represents a displayable item in the transcript viewer.
type MessageItem interface {
	// ID returns the unique identifier for this item.
	ID() string
	// Render returns the rendered string representation at the given width.
	Render(width int) string
	// Height returns the number of lines this item occupies (0 if not yet rendered).
	Height() int
}

// Expandable is an optional interface for message items that support
// expand/collapse.
type Expandable interface {
	IsExpanded() bool
	ToggleExpanded()
}

// ScrollList is a lazy-rendering scrollable list that only renders visible
// items. Unlike a viewport which re-processes entire content on every
// SetContent(), ScrollList maintains an offset-based view into a list of
// items and only renders what's visible in the current viewport.
type ScrollList struct {
	items       []MessageItem // All items in the list
	offsetIdx   int           // Index of the first visible item
	offsetLine  int           // Number of lines to skip from the first visible item
	width       int           // Viewport width
	height      int           // Viewport height
	autoScroll  bool          // Whether to auto-scroll to bottom on content changes
	focused     bool          // Whether this list has keyboard focus
	selectedIdx int           // Index of selected item (-1 = no selection)
}

// NewScrollList creates a new ScrollList with the given width and height.
func NewScrollList(width, height int) *ScrollList {
	return &ScrollList{
		items:       make([]MessageItem, 0),
		width:       width,
		height:      height,
		autoScroll:  false,
		selectedIdx: -1,
	}
}

// SetItems replaces all items in the list.
func (s *ScrollList) SetItems(items []MessageItem) {
	s.items = items
	s.clampOffset()
}

// Items returns the current item slice.
func (s *ScrollList) Items() []MessageItem {
	return s.items
}

// SetWidth updates the viewport width and invalidates cached item renders.
func (s *ScrollList) SetWidth(width int) {
	if width == s.width {
		return
	}
	s.width = width
}

// SetHeight updates the viewport height.
func (s *ScrollList) SetHeight(height int) {
	s.height = height
	s.clampOffset()
}

// SetFocused sets the focus state of the list.
func (s *ScrollList) SetFocused(focused bool) {
	s.focused = focused
}

// SetSelected sets the selected item index. Pass -1 to clear selection.
func (s *ScrollList) SetSelected(idx int) {
	if idx < -1 || idx >= len(s.items) {
		s.selectedIdx = -1
	} else {
		s.selectedIdx = idx
	}
}

// SelectedIdx returns the current selected item index (-1 if no selection).
func (s *ScrollList) SelectedIdx() int {
	return s.selectedIdx
}

// SelectedItem returns the currently selected item, or nil.
func (s *ScrollList) SelectedItem() MessageItem {
	if s.selectedIdx < 0 || s.selectedIdx >= len(s.items) {
		return nil
	}
	return s.items[s.selectedIdx]
}

// MoveSelection moves the selection by delta items, clamped to bounds, and
// scrolls so the selected item is visible.
func (s *ScrollList) MoveSelection(delta int) {
	if len(s.items) == 0 {
		return
	}
	idx := s.selectedIdx + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.items) {
		idx = len(s.items) - 1
	}
	s.selectedIdx = idx
	s.scrollToItem(idx)
}

// scrollToItem adjusts the offset so the item at idx starts within view.
func (s *ScrollList) scrollToItem(idx int) {
	if idx < 0 || idx >= len(s.items) {
		return
	}
	if idx <= s.offsetIdx {
		s.offsetIdx = idx
		s.offsetLine = 0
		return
	}
	// Scroll down until the item's first line fits inside the viewport.
	itemTop := 0
	for i := s.offsetIdx; i < idx; i++ {
		itemTop += s.itemHeight(i)
	}
	itemTop -= s.offsetLine
	itemBottom := itemTop + s.itemHeight(idx)
	if itemBottom > s.height {
		s.ScrollBy(itemBottom - s.height)
	}
}

func (s *ScrollList) itemHeight(idx int) int {
	item := s.items[idx]
	h := item.Height()
	if h == 0 {
		item.Render(s.width)
		h = item.Height()
	}
	return h
}

// View returns the rendered view of visible items. Only renders items that
// are visible within the viewport height.
func (s *ScrollList) View() string {
	if len(s.items) == 0 {
		return ""
	}

	marker := theme.Current().S().SelectedMarker

	var result strings.Builder
	linesRendered := 0

	// Start from offsetIdx and render items until we fill the viewport height
	for i := s.offsetIdx; i < len(s.items) && linesRendered < s.height; i++ {
		item := s.items[i]

		rendered := item.Render(s.width)

		// For the first visible item, skip offsetLine lines
		if i == s.offsetIdx && s.offsetLine > 0 {
			lines := strings.Split(rendered, "\n")
			if s.offsetLine < len(lines) {
				rendered = strings.Join(lines[s.offsetLine:], "\n")
			} else {
				continue
			}
		}

		if i == s.selectedIdx {
			rendered = marker.Render("▸ ") + rendered
		}

		// Count lines in rendered output
		itemLines := strings.Count(rendered, "\n") + 1
		if linesRendered+itemLines > s.height {
			// Truncate to fit remaining space
			lines := strings.Split(rendered, "\n")
			remainingLines := s.height - linesRendered
			if remainingLines > 0 {
				rendered = strings.Join(lines[:remainingLines], "\n")
			} else {
				break
			}
		}

		result.WriteString(rendered)
		linesRendered += strings.Count(rendered, "\n") + 1

		// Add newline between items (if not the last visible item)
		if linesRendered < s.height && i < len(s.items)-1 {
			result.WriteString("\n")
			linesRendered++
		}
	}

	return result.String()
}

// ScrollBy scrolls the viewport by the given number of lines.
// Positive values scroll down, negative values scroll up.
func (s *ScrollList) ScrollBy(lines int) {
	if lines == 0 {
		return
	}

	if lines > 0 {
		for lines > 0 && s.offsetIdx < len(s.items) {
			itemHeight := s.itemHeight(s.offsetIdx)

			remainingLines := itemHeight - s.offsetLine
			if lines >= remainingLines {
				s.offsetIdx++
				s.offsetLine = 0
				lines -= remainingLines
			} else {
				s.offsetLine += lines
				lines = 0
			}
		}
	} else {
		lines = -lines
		for lines > 0 && (s.offsetIdx > 0 || s.offsetLine > 0) {
			if s.offsetLine >= lines {
				s.offsetLine -= lines
				lines = 0
			} else {
				lines -= s.offsetLine
				s.offsetLine = 0
				if s.offsetIdx > 0 {
					s.offsetIdx--
					s.offsetLine = s.itemHeight(s.offsetIdx) - 1
					if s.offsetLine < 0 {
						s.offsetLine = 0
					}
					lines--
				}
			}
		}
	}

	s.clampOffset()
}

// GotoBottom scrolls to the bottom of the list.
func (s *ScrollList) GotoBottom() {
	if len(s.items) == 0 {
		return
	}

	totalLines := s.TotalLineCount()
	if totalLines <= s.height {
		s.offsetIdx = 0
		s.offsetLine = 0
		return
	}

	// Calculate offset to show last s.height lines
	targetLine := totalLines - s.height
	currentLine := 0

	for i := 0; i < len(s.items); i++ {
		itemHeight := s.itemHeight(i)
		if currentLine+itemHeight > targetLine {
			s.offsetIdx = i
			s.offsetLine = targetLine - currentLine
			return
		}
		currentLine += itemHeight
	}

	// Fallback: show last item
	s.offsetIdx = len(s.items) - 1
	s.offsetLine = 0
}

// GotoTop scrolls to the top of the list.
func (s *ScrollList) GotoTop() {
	s.offsetIdx = 0
	s.offsetLine = 0
}

// AtBottom returns true if the viewport is scrolled to the bottom.
func (s *ScrollList) AtBottom() bool {
	if len(s.items) == 0 {
		return true
	}
	return s.currentOffsetInLines()+s.height >= s.TotalLineCount()
}

// TotalLineCount returns the total number of lines across all items.
func (s *ScrollList) TotalLineCount() int {
	total := 0
	for i := range s.items {
		total += s.itemHeight(i)
	}
	return total
}

// ScrollPercent returns the current scroll position as a percentage (0.0 to 1.0).
func (s *ScrollList) ScrollPercent() float64 {
	if len(s.items) == 0 {
		return 0.0
	}

	totalLines := s.TotalLineCount()
	if totalLines <= s.height {
		return 1.0
	}

	maxOffset := totalLines - s.height
	if maxOffset <= 0 {
		return 1.0
	}

	pct := float64(s.currentOffsetInLines()) / float64(maxOffset)
	if pct > 1.0 {
		pct = 1.0
	}
	if pct < 0.0 {
		pct = 0.0
	}
	return pct
}

// Update handles messages for the scroll list.
// Only processes keyboard events when focused is true.
func (s *ScrollList) Update(msg tea.Msg) tea.Cmd {
	if !s.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "pgup":
			s.ScrollBy(-s.height)
			s.autoScroll = false
		case "pgdown":
			s.ScrollBy(s.height)
			if s.AtBottom() {
				s.autoScroll = true
			}
		case "home":
			s.GotoTop()
			s.autoScroll = false
		case "end":
			s.GotoBottom()
			s.autoScroll = true
		}
	}

	return nil
}

// currentOffsetInLines returns the current scroll offset in lines.
func (s *ScrollList) currentOffsetInLines() int {
	offset := 0
	for i := 0; i < s.offsetIdx && i < len(s.items); i++ {
		offset += s.itemHeight(i)
	}
	offset += s.offsetLine
	return offset
}

// clampOffset ensures offset is within valid bounds.
func (s *ScrollList) clampOffset() {
	if len(s.items) == 0 {
		s.offsetIdx = 0
		s.offsetLine = 0
		return
	}

	if s.offsetIdx >= len(s.items) {
		s.offsetIdx = len(s.items) - 1
	}
	if s.offsetIdx < 0 {
		s.offsetIdx = 0
	}

	h := s.itemHeight(s.offsetIdx)
	if s.offsetLine >= h {
		s.offsetLine = h - 1
	}
	if s.offsetLine < 0 {
		s.offsetLine = 0
	}
}
