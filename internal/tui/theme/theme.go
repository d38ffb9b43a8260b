package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgCrust    string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Diff colors
	DiffInsertBg  string
	DiffDeleteBg  string
	DiffEqualBg   string
	DiffMissingBg string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

var (
	current     *Theme
	currentOnce sync.Once
)

// Current returns the active theme. Catppuccin Mocha is the only theme for
// now; the accessor keeps call sites stable if that changes.
func Current() *Theme {
	currentOnce.Do(func() {
		current = NewCatppuccinMocha()
	})
	return current
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		HeaderMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),

		ListItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			Padding(0, 1),
		ListSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBright)).
			Background(lipgloss.Color(t.BgSurface0)).
			Bold(true).
			Padding(0, 1),
		ListMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		SelectedMarker: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Background(lipgloss.Color(t.BgMantle)).
			Padding(0, 1),
		HintKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Secondary)).
			Bold(true),
		HintLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		ErrorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Bold(true),

		UserHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Secondary)).
			Bold(true),
		AssistantBorder: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color(t.Primary)).
			PaddingLeft(1),
		UserBorder: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color(t.Secondary)).
			PaddingLeft(1),
		ThinkingBox: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgMantle)).
			Italic(true).
			Padding(0, 1),
		Truncation: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			Italic(true),

		ToolName: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Tertiary)).
			Bold(true),
		ToolParams: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		ToolOutput: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Background(lipgloss.Color(t.BgSurface0)).
			MarginLeft(2),
		ToolError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Background(lipgloss.Color(t.BgSurface0)).
			MarginLeft(2),
		IconSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),
		IconError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)),

		DiffInsert: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Background(lipgloss.Color(t.DiffInsertBg)),
		DiffDelete: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Background(lipgloss.Color(t.DiffDeleteBg)),
		DiffContext: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.DiffEqualBg)),
		DiffHunk: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)).
			Background(lipgloss.Color(t.DiffMissingBg)),
	}
}
