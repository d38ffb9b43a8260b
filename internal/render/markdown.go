package render

import (
	"bytes"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	markdownOnce     sync.Once
	markdownInstance goldmark.Markdown
)

// markdownRenderer returns the process-wide goldmark instance, built once on
// first use. GFM extensions plus hard wraps (newlines in assistant checklists
// should break lines) and a fenced-code hook that reuses the chroma
// highlighter.
func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
				extension.Footnote,
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
				goldmarkhtml.WithUnsafe(),
			),
		)
		markdownInstance.Renderer().AddOptions(
			renderer.WithNodeRenderers(util.Prioritized(&fencedCodeRenderer{}, 100)),
		)
	})
	return markdownInstance
}

// RenderMarkdown converts markdown text to HTML with syntax-highlighted code
// blocks. Falls back to an escaped <pre> when conversion fails.
func RenderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(text), &buf); err != nil {
		return "<pre>" + EscapeHTML(text) + "</pre>"
	}
	return buf.String()
}

// fencedCodeRenderer overrides fenced code block rendering to run blocks with
// a language hint through chroma. Blocks without a hint render as plain
// escaped <pre><code>.
type fencedCodeRenderer struct{}

func (r *fencedCodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fencedCodeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		line := n.Lines().At(i)
		code.Write(source[line.Start:line.Stop])
	}

	lang := string(n.Language(source))
	_, _ = w.WriteString(highlightFencedBlock(code.String(), lang))
	return ast.WalkContinue, nil
}

// highlightFencedBlock highlights a markdown code block by language name.
// No line numbers inside markdown blocks.
func highlightFencedBlock(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		return "<pre><code>" + EscapeHTML(code) + "</code></pre>\n"
	}

	lexer = chroma.Coalesce(lexer)
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre><code>" + EscapeHTML(code) + "</code></pre>\n"
	}
	return `<div class="highlight"><pre>` + formatTokens(iterator) + "</pre></div>\n"
}
