package render

import (
	"strings"
	"testing"
)

func TestConvertANSIToHTMLBasicColor(t *testing.T) {
	got := ConvertANSIToHTML("\x1b[32mOK\x1b[0m")
	want := `<span class="ansi-green">OK</span>`
	if got != want {
		t.Errorf("ConvertANSIToHTML() = %q, want %q", got, want)
	}
	if strings.Count(got, "<span") != 1 {
		t.Errorf("expected exactly one span, got %q", got)
	}
}

func TestConvertANSIToHTMLStylePersistence(t *testing.T) {
	// SGR state accumulates until explicitly reset: red, then red+bold,
	// then plain after the full reset.
	got := ConvertANSIToHTML("\x1b[31mred\x1b[1mbold-red\x1b[0mplain")

	if !strings.Contains(got, `<span class="ansi-red">red</span>`) {
		t.Errorf("missing red-only segment in %q", got)
	}
	if !strings.Contains(got, `<span class="ansi-red ansi-bold">bold-red</span>`) {
		t.Errorf("missing red+bold segment in %q", got)
	}
	if !strings.HasSuffix(got, "plain") {
		t.Errorf("expected unstyled trailing segment in %q", got)
	}
	if strings.Count(got, "<span") != 2 {
		t.Errorf("expected two spans, got %q", got)
	}
}

func TestConvertANSIToHTMLStripsControlSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cursor movement", "\x1b[2Ahello\x1b[3B world", "hello world"},
		{"erase display", "\x1b[2Jcleared", "cleared"},
		{"erase line", "text\x1b[K", "text"},
		{"private mode", "\x1b[?25lhidden cursor\x1b[?25h", "hidden cursor"},
		{"osc title", "\x1b]0;window title\x07after", "after"},
		{"scroll", "\x1b[3Sscrolled", "scrolled"},
		{"stray non-sgr", "\x1b[1;5Rplain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertANSIToHTML(tt.input)
			if got != tt.want {
				t.Errorf("ConvertANSIToHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.Contains(got, "<span") {
				t.Errorf("control-only input must yield zero spans, got %q", got)
			}
		})
	}
}

func TestConvertANSIToHTMLRGBPrecedence(t *testing.T) {
	// Named color after RGB wins the channel.
	got := ConvertANSIToHTML("\x1b[38;2;10;20;30m\x1b[31mtext")
	if !strings.Contains(got, `class="ansi-red"`) {
		t.Errorf("named color should override earlier RGB, got %q", got)
	}
	if strings.Contains(got, "rgb(") {
		t.Errorf("RGB style should be cleared by named color, got %q", got)
	}

	// RGB after named color wins the channel.
	got = ConvertANSIToHTML("\x1b[31m\x1b[38;2;10;20;30mtext")
	if !strings.Contains(got, "color: rgb(10, 20, 30)") {
		t.Errorf("RGB should override earlier named color, got %q", got)
	}
	if strings.Contains(got, "ansi-red") {
		t.Errorf("named class should be cleared by RGB, got %q", got)
	}
}

func TestConvertANSIToHTMLRGBBackground(t *testing.T) {
	got := ConvertANSIToHTML("\x1b[48;2;1;2;3mtext\x1b[49mplain")
	if !strings.Contains(got, "background-color: rgb(1, 2, 3)") {
		t.Errorf("missing RGB background in %q", got)
	}
	if !strings.HasSuffix(got, "plain") {
		t.Errorf("49 should reset the background, got %q", got)
	}
}

func TestConvertANSIToHTMLMalformedRGB(t *testing.T) {
	// Insufficient trailing sub-codes: ignored, state unchanged.
	got := ConvertANSIToHTML("\x1b[38;2;10mtext")
	if got != "text" {
		t.Errorf("malformed RGB must be a no-op, got %q", got)
	}

	// 38 not followed by 2 (256-color palette) is ignored.
	got = ConvertANSIToHTML("\x1b[38;5;196mtext")
	if got != "text" {
		t.Errorf("256-color mode must be ignored, got %q", got)
	}
}

func TestConvertANSIToHTMLTruncatedRGBDropsGroup(t *testing.T) {
	// Codes trailing a truncated RGB list could be color components, so the
	// whole group is dropped: the 31 here is never applied as red.
	got := ConvertANSIToHTML("\x1b[38;2;1;31mtext")
	if got != "text" {
		t.Errorf("truncated RGB group must leave state unchanged, got %q", got)
	}

	// Styles set before the malformed group survive it.
	got = ConvertANSIToHTML("\x1b[31mred\x1b[38;2;1mstill-red")
	if !strings.Contains(got, `<span class="ansi-red">red</span>`) ||
		!strings.Contains(got, `<span class="ansi-red">still-red</span>`) {
		t.Errorf("earlier state should persist through a truncated group, got %q", got)
	}

	// A later, well-formed group still applies.
	got = ConvertANSIToHTML("\x1b[38;2;1;31m\x1b[32mgreen")
	if !strings.Contains(got, `<span class="ansi-green">green</span>`) {
		t.Errorf("following groups must not be affected, got %q", got)
	}

	// Same rule for the background channel.
	got = ConvertANSIToHTML("\x1b[48;2;1;41mtext")
	if got != "text" {
		t.Errorf("truncated background RGB group must be a no-op, got %q", got)
	}
}

func TestConvertANSIToHTMLChannelResets(t *testing.T) {
	got := ConvertANSIToHTML("\x1b[31;42mboth\x1b[39mbg-only\x1b[49mnone")
	if !strings.Contains(got, `<span class="ansi-red ansi-bg-green">both</span>`) {
		t.Errorf("missing combined fg+bg segment in %q", got)
	}
	if !strings.Contains(got, `<span class="ansi-bg-green">bg-only</span>`) {
		t.Errorf("39 should clear only the foreground, got %q", got)
	}
	if !strings.HasSuffix(got, "none") {
		t.Errorf("49 should clear the background, got %q", got)
	}
}

func TestConvertANSIToHTMLStyleClears(t *testing.T) {
	got := ConvertANSIToHTML("\x1b[1;2;3;4mall\x1b[22mno-weight\x1b[23;24mnone")
	if !strings.Contains(got, `<span class="ansi-bold ansi-dim ansi-italic ansi-underline">all</span>`) {
		t.Errorf("missing full style segment in %q", got)
	}
	if !strings.Contains(got, `<span class="ansi-italic ansi-underline">no-weight</span>`) {
		t.Errorf("22 should clear bold and dim together, got %q", got)
	}
	if !strings.HasSuffix(got, "none") {
		t.Errorf("23/24 should clear italic and underline, got %q", got)
	}
}

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<b>"a" & 'b'</b>`)
	want := "&lt;b&gt;&quot;a&quot; &amp; &#39;b&#39;&lt;/b&gt;"
	if got != want {
		t.Errorf("EscapeHTML() = %q, want %q", got, want)
	}
}

func TestEscapeHTMLNormalizesLineEndings(t *testing.T) {
	got := EscapeHTML("a\r\nb\rc")
	if got != "a\nb\nc" {
		t.Errorf("EscapeHTML() = %q, want %q", got, "a\nb\nc")
	}
}
