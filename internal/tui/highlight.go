package tui

import (
	"bytes"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

// syntaxHighlight applies syntax highlighting to source code and returns
// a string with ANSI color codes for terminal display.
//
// It uses the fileName to detect the language, falling back to content
// analysis, and finally to a plain text lexer. The output uses true color
// (24-bit) ANSI codes.
func syntaxHighlight(source, fileName string) string {
	t := theme.Current()
	fallback := func() string {
		return t.S().ToolOutput.Render(source)
	}

	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return fallback()
	}

	baseStyle := styles.Get("monokai")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}

	// Transform all token backgrounds to match the code block background.
	// Without this, chroma's monokai theme uses #272822 which clashes with
	// the surface color.
	bgColour := chroma.MustParseColour(t.BgSurface0)
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bgColour
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fallback()
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return fallback()
	}

	return strings.TrimRight(buf.String(), "\n")
}
