package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mark3labs/transcriptr/internal/logger"
	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

const (
	logoText1 = "▀█▀ █▀█ ▄▀█ █▄ █ █▀ █▀▀ █▀█ █ █▀█ ▀█▀ █▀█"
	logoText2 = " █  █▀▄ █▀█ █ ▀█ ▄█ █▄▄ █▀▄ █ █▀▀  █  █▀▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "transcriptr",
	Short: "Convert Claude Code transcripts to HTML and Markdown, with a terminal browser",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

transcriptr reads Claude Code session transcripts (JSONL files under
~/.claude/projects) and renders them as browsable HTML or Markdown pages.
It also ships a full-screen terminal browser for flipping through projects
and sessions, and an MCP server that exposes the same data to agents.

Configuration is loaded with the following precedence:
  CLI flags > Environment variables > Project config > Global config > Defaults

Project config: ./transcriptr.yml
Global config: ~/.config/transcriptr/transcriptr.yml`

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(setupCmd)
}
