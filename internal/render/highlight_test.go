package render

import (
	"strings"
	"testing"
)

func TestHighlightCodeTableStructure(t *testing.T) {
	got := HighlightCode("package main\n\nfunc main() {}\n", "main.go", true, 1)

	for _, marker := range []string{
		`<div class="highlight"><table class="highlighttable"><tr>`,
		`<td class="linenos"><div class="linenodiv"><pre>`,
		`<td class="code"><div><pre>`,
		`</pre></div></td>`,
		`</tr></table></div>`,
	} {
		if !strings.Contains(got, marker) {
			t.Errorf("missing wrapper marker %q in %q", marker, got)
		}
	}
	if !strings.Contains(got, `<span class="kn">package</span>`) {
		t.Errorf("expected highlighted keyword span in %q", got)
	}
}

func TestHighlightCodeStartLine(t *testing.T) {
	got := HighlightCode("a\nb\nc\n", "notes.txt", true, 42)

	if !strings.Contains(got, "<pre>42\n43\n44</pre>") {
		t.Errorf("line numbers should start at 42, got %q", got)
	}
}

func TestHighlightCodeNoLineNumbers(t *testing.T) {
	got := HighlightCode("x = 1\n", "script.py", false, 1)

	if !strings.HasPrefix(got, `<div class="highlight"><pre>`) {
		t.Errorf("plain mode should use the bare pre wrapper, got %q", got)
	}
	if strings.Contains(got, "highlighttable") {
		t.Errorf("plain mode must not emit the table, got %q", got)
	}
}

func TestHighlightCodeUnknownExtension(t *testing.T) {
	// Unknown types fall back to plain text but keep the structure, and the
	// result is identical on every call.
	first := HighlightCode("data\n", "file.zzzunknown", true, 1)
	for i := 0; i < 5; i++ {
		if got := HighlightCode("data\n", "file.zzzunknown", true, 1); got != first {
			t.Fatalf("fallback output not deterministic: %q vs %q", got, first)
		}
	}
	if !strings.Contains(first, "data") {
		t.Errorf("content missing from fallback output %q", first)
	}
}

func TestHighlightCodeEscapesUnknownContent(t *testing.T) {
	got := HighlightCode("<script>alert(1)</script>\n", "file.zzzunknown", false, 1)
	if strings.Contains(got, "<script>") {
		t.Errorf("content must be escaped, got %q", got)
	}
}

func TestHighlightCodeSpansNeverCrossLines(t *testing.T) {
	got := HighlightCode("/* multi\nline\ncomment */\n", "c.go", false, 1)

	for _, line := range strings.Split(got, "\n") {
		if strings.Count(line, "<span") != strings.Count(line, "</span>") {
			t.Errorf("unbalanced spans within a line: %q", line)
		}
	}
}

func TestLookupLexerAlias(t *testing.T) {
	tests := []struct {
		path      string
		wantMatch bool
	}{
		{"main.go", true},
		{"script.py", true},
		{"/some/dir/Makefile", true},
		{"Dockerfile", true},
		{"file.zzzunknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, ok := lookupLexerAlias(tt.path)
			if ok != tt.wantMatch {
				t.Errorf("lookupLexerAlias(%q) matched=%v, want %v", tt.path, ok, tt.wantMatch)
			}
		})
	}
}

func TestTruncateHighlightedHTML(t *testing.T) {
	full := HighlightCode("l1\nl2\nl3\nl4\nl5\n", "notes.txt", true, 1)
	got := TruncateHighlightedHTML(full, 3)

	if !strings.Contains(got, "<pre>1\n2\n3</pre>") {
		t.Errorf("line numbers should stop at 3, got %q", got)
	}
	if strings.Contains(got, "l4") || strings.Contains(got, "l5") {
		t.Errorf("truncated output still contains later lines: %q", got)
	}
	// The wrappers survive byte-for-byte.
	if !strings.Contains(got, `<table class="highlighttable">`) || !strings.HasSuffix(got, "</tr></table></div>") {
		t.Errorf("wrapper structure damaged: %q", got)
	}
}

func TestTruncateHighlightedHTMLShortInput(t *testing.T) {
	full := HighlightCode("only\ntwo\n", "notes.txt", true, 1)
	if got := TruncateHighlightedHTML(full, 10); got != full {
		t.Errorf("input under the limit must pass through unchanged:\n%q\nvs\n%q", got, full)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo", 2},
		{"one\ntwo\n", 2},
	}

	for _, tt := range tests {
		if got := countLines(tt.input); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
