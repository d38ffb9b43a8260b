package render

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// lexerBinding associates a lowercased filename glob with a lexer alias.
type lexerBinding struct {
	pattern string
	alias   string
}

var (
	lexerCacheOnce sync.Once

	// extensionCache maps a bare extension ("go", "py") to a lexer alias.
	// Built only from globs of the exact shape "*.ext"; first registered wins.
	extensionCache map[string]string

	// patternCache holds every filename glob in registry order for the slow
	// fallback path. A slice keeps lookups deterministic across calls.
	patternCache []lexerBinding
)

func initLexerCaches() {
	extensionCache = make(map[string]string)

	for _, lexer := range lexers.GlobalLexerRegistry.Lexers {
		cfg := lexer.Config()
		if cfg == nil || len(cfg.Filenames) == 0 {
			continue
		}
		alias := cfg.Name
		if len(cfg.Aliases) > 0 {
			alias = cfg.Aliases[0]
		}
		globs := make([]string, 0, len(cfg.Filenames)+len(cfg.AliasFilenames))
		globs = append(globs, cfg.Filenames...)
		globs = append(globs, cfg.AliasFilenames...)
		for _, glob := range globs {
			pattern := strings.ToLower(glob)
			patternCache = append(patternCache, lexerBinding{pattern: pattern, alias: alias})
			if strings.HasPrefix(pattern, "*.") && !strings.ContainsAny(pattern[2:], "*?[") {
				ext := pattern[2:]
				if _, ok := extensionCache[ext]; !ok {
					extensionCache[ext] = alias
				}
			}
		}
	}
}

// lookupLexerAlias resolves a file path to a lexer alias. The extension map
// is O(1) and covers nearly all calls; non-trivial globs like "Makefile" go
// through the linear pattern scan. Returns false when nothing matches.
func lookupLexerAlias(filePath string) (string, bool) {
	lexerCacheOnce.Do(initLexerCaches)

	basename := strings.ToLower(filepath.Base(filePath))

	if idx := strings.LastIndex(basename, "."); idx >= 0 {
		if alias, ok := extensionCache[basename[idx+1:]]; ok {
			return alias, true
		}
	}

	for _, binding := range patternCache {
		if ok, err := filepath.Match(binding.pattern, basename); err == nil && ok {
			return binding.alias, true
		}
	}

	return "", false
}

// resolveLexer returns a lexer for the file path, falling back to plain text
// so output is always escaped and wrapped consistently.
func resolveLexer(filePath string) chroma.Lexer {
	if alias, ok := lookupLexerAlias(filePath); ok {
		if lexer := lexers.Get(alias); lexer != nil {
			return lexer
		}
	}
	return lexers.Fallback
}

// HighlightCode highlights source code, picking a lexer from the file path.
//
// With showLineNumbers the output is a two-column table: line numbers
// (starting at startLine, so excerpts keep their absolute numbering) and the
// highlighted code, each inside a <pre>. The wrapper markup is byte-stable so
// TruncateHighlightedHTML can slice previews out of it without re-lexing.
//
// Unknown file types render as escaped plain text in the same structure.
// Never fails.
func HighlightCode(code, filePath string, showLineNumbers bool, startLine int) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")

	// Coalesce merges adjacent same-type tokens; leading whitespace is
	// preserved because indentation is significant for source code.
	lexer := chroma.Coalesce(resolveLexer(filePath))

	var codeHTML string
	if iterator, err := lexer.Tokenise(nil, code); err != nil {
		codeHTML = EscapeHTML(code)
	} else {
		codeHTML = formatTokens(iterator)
	}

	if !showLineNumbers {
		return `<div class="highlight"><pre>` + codeHTML + `</pre></div>`
	}

	lineCount := countLines(code)
	var nums strings.Builder
	for i := 0; i < lineCount; i++ {
		if i > 0 {
			nums.WriteByte('\n')
		}
		nums.WriteString(strconv.Itoa(startLine + i))
	}

	return `<div class="highlight"><table class="highlighttable"><tr>` +
		`<td class="linenos"><div class="linenodiv"><pre>` + nums.String() + `</pre></div></td>` +
		`<td class="code"><div><pre>` + codeHTML + `</pre></div></td>` +
		`</tr></table></div>`
}

func countLines(code string) int {
	lines := strings.Count(code, "\n") + 1
	if strings.HasSuffix(code, "\n") {
		lines--
	}
	if lines < 1 {
		lines = 1
	}
	return lines
}

// formatTokens emits token spans with chroma's standard short class names.
// Token values are split at newlines so no span crosses a line boundary;
// newlines sit bare between spans, which is what keeps a first-N-lines slice
// of the output well-formed.
func formatTokens(iterator chroma.Iterator) string {
	var out strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		class := tokenClass(token.Type)
		pieces := strings.Split(token.Value, "\n")
		for i, piece := range pieces {
			if i > 0 {
				out.WriteByte('\n')
			}
			if piece == "" {
				continue
			}
			if class == "" {
				out.WriteString(EscapeHTML(piece))
			} else {
				out.WriteString(`<span class="` + class + `">` + EscapeHTML(piece) + `</span>`)
			}
		}
	}
	return out.String()
}

// tokenClass walks up the token type hierarchy until a standard class name
// is found, mirroring how chroma's own HTML formatter assigns classes.
func tokenClass(t chroma.TokenType) string {
	for t != 0 {
		if class, ok := chroma.StandardTypes[t]; ok {
			return class
		}
		t = t.Parent()
	}
	return ""
}

var (
	linenosPrePattern = regexp.MustCompile(`(?s)(<div class="linenodiv"><pre>)(.*?)(</pre></div>)`)
	codePrePattern    = regexp.MustCompile(`(?s)(<td class="code"><div><pre>)(.*?)(</pre></div></td>)`)
)

// TruncateHighlightedHTML truncates already-highlighted HTML to the first
// maxLines lines, keeping the surrounding table structure byte-for-byte. The
// line-number <pre> and the code <pre> are truncated independently so the
// columns stay aligned. Operates on text between the known wrapper markers;
// never re-lexes.
func TruncateHighlightedHTML(highlightedHTML string, maxLines int) string {
	truncate := func(pattern *regexp.Regexp, html string) string {
		return pattern.ReplaceAllStringFunc(html, func(match string) string {
			groups := pattern.FindStringSubmatch(match)
			lines := strings.Split(groups[2], "\n")
			if len(lines) > maxLines {
				lines = lines[:maxLines]
			}
			return groups[1] + strings.Join(lines, "\n") + groups[3]
		})
	}

	result := truncate(linenosPrePattern, highlightedHTML)
	return truncate(codePrePattern, result)
}
