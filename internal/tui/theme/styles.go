package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	// Screen chrome
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style
	StatusBar   lipgloss.Style
	HintKey     lipgloss.Style
	HintLabel   lipgloss.Style
	ErrorText   lipgloss.Style

	// List screens (projects, sessions)
	ListItem       lipgloss.Style
	ListSelected   lipgloss.Style
	ListMeta       lipgloss.Style
	SelectedMarker lipgloss.Style

	// Transcript viewer
	UserHeader      lipgloss.Style
	UserBorder      lipgloss.Style
	AssistantBorder lipgloss.Style
	ThinkingBox     lipgloss.Style
	Truncation      lipgloss.Style
	ToolName        lipgloss.Style
	ToolParams      lipgloss.Style
	ToolOutput      lipgloss.Style
	ToolError       lipgloss.Style
	IconSuccess     lipgloss.Style
	IconError       lipgloss.Style

	// Diff rendering
	DiffInsert  lipgloss.Style
	DiffDelete  lipgloss.Style
	DiffContext lipgloss.Style
	DiffHunk    lipgloss.Style
}
