package theme

// NewCatppuccinMocha creates the default Catppuccin Mocha theme.
func NewCatppuccinMocha() *Theme {
	return &Theme{
		Name:   "catppuccin-mocha",
		IsDark: true,

		// Semantic colors
		Primary:   "#cba6f7", // Mauve
		Secondary: "#89b4fa", // Blue
		Tertiary:  "#b4befe", // Lavender

		// Background hierarchy
		BgBase:     "#1e1e2e", // Base background
		BgMantle:   "#181825", // Slightly darker than base
		BgCrust:    "#11111b", // Darkest shade
		BgSurface0: "#313244", // Surface overlay (light)
		BgSurface1: "#45475a", // Surface overlay (medium)
		BgSurface2: "#585b70", // Surface overlay (dark)
		BgOverlay:  "#6c7086", // Overlay for subtle elements

		// Foreground hierarchy
		FgMuted:  "#a6adc8", // Subtext (muted)
		FgSubtle: "#bac2de", // Subtext (less muted)
		FgBase:   "#cdd6f4", // Main text color
		FgBright: "#f5e0dc", // Brightest text (rosewater)

		// Status colors
		Success: "#a6e3a1", // Green
		Warning: "#f9e2af", // Yellow
		Error:   "#f38ba8", // Red
		Info:    "#89dceb", // Sky

		// Diff colors
		DiffInsertBg:  "#303a30", // Green-tinted background for insertions
		DiffDeleteBg:  "#3a3030", // Red-tinted background for deletions
		DiffEqualBg:   "#1e1e2e", // Neutral background for context lines
		DiffMissingBg: "#181825", // Dim background for hunk headers
	}
}
