package render

import (
	"regexp"
	"strings"
)

// Cursor movement and screen manipulation sequences stripped before SGR
// parsing. These never affect color state; they only move a cursor or touch
// screen state this renderer does not model. Order matters: stripping them
// first keeps interleaved cursor codes from breaking SGR detection.
var cursorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\x1b\[[0-9]*[ABCD]`),      // Cursor movement (up, down, forward, back)
	regexp.MustCompile(`\x1b\[[0-9]*[EF]`),        // Cursor next/previous line
	regexp.MustCompile(`\x1b\[[0-9]*[GH]`),        // Cursor horizontal/home position
	regexp.MustCompile(`\x1b\[[0-9;]*[Hf]`),       // Cursor position
	regexp.MustCompile(`\x1b\[[0-9]*[JK]`),        // Erase display/line
	regexp.MustCompile(`\x1b\[[0-9]*[ST]`),        // Scroll up/down
	regexp.MustCompile(`\x1b\[\?[0-9]*[hl]`),      // Private mode set/reset (show/hide cursor, etc.)
	regexp.MustCompile(`\x1b\[[0-9]*[PXYZ@]`),     // Insert/delete operations
	regexp.MustCompile(`\x1b\[=[0-9]*[A-Za-z]`),   // Alternate character set
	regexp.MustCompile(`\x1b\][0-9];[^\x07]*\x07`),     // Operating System Command (OSC)
	regexp.MustCompile(`\x1b\][0-9];[^\x1b]*\x1b\\`),   // OSC with string terminator
}

var (
	// Safety net for escape sequences not in the catalogue. Go's regexp has
	// no lookahead, so every CSI-shaped sequence is matched and only SGR
	// (final byte 'm') survives the replacement.
	strayEscapePattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

	sgrPattern = regexp.MustCompile(`\x1b\[([0-9;]+)m`)
)

var ansiForegrounds = map[string]string{
	"30": "black",
	"31": "red",
	"32": "green",
	"33": "yellow",
	"34": "blue",
	"35": "magenta",
	"36": "cyan",
	"37": "white",
	"90": "bright-black",
	"91": "bright-red",
	"92": "bright-green",
	"93": "bright-yellow",
	"94": "bright-blue",
	"95": "bright-magenta",
	"96": "bright-cyan",
	"97": "bright-white",
}

var ansiBackgrounds = map[string]string{
	"40":  "black",
	"41":  "red",
	"42":  "green",
	"43":  "yellow",
	"44":  "blue",
	"45":  "magenta",
	"46":  "cyan",
	"47":  "white",
	"100": "bright-black",
	"101": "bright-red",
	"102": "bright-green",
	"103": "bright-yellow",
	"104": "bright-blue",
	"105": "bright-magenta",
	"106": "bright-cyan",
	"107": "bright-white",
}

// sgrState is the cumulative style state of the scan. Styles persist until
// explicitly changed or reset, matching terminal semantics.
type sgrState struct {
	fg        string // "ansi-<color>" class, empty when unset
	bg        string // "ansi-bg-<color>" class
	bold      bool
	dim       bool
	italic    bool
	underline bool
	rgbFg     string // inline "color: rgb(r, g, b)", wins over fg when set
	rgbBg     string // inline "background-color: rgb(r, g, b)"
}

// ConvertANSIToHTML converts ANSI escape codes to HTML spans with CSS classes.
//
// Supports:
//   - Colors (30-37, 90-97 for foreground; 40-47, 100-107 for background)
//   - RGB colors (38;2;r;g;b for foreground; 48;2;r;g;b for background)
//   - Bold (1), Dim (2), Italic (3), Underline (4)
//   - Reset (0, 39, 49, 22, 23, 24)
//   - Strips cursor movement and screen manipulation codes
//
// Unrecognized sequences are removed rather than passed through; malformed
// codes leave the style state unchanged. Never fails.
func ConvertANSIToHTML(text string) string {
	for _, pattern := range cursorPatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	text = strayEscapePattern.ReplaceAllStringFunc(text, func(seq string) string {
		if strings.HasSuffix(seq, "m") {
			return seq
		}
		return ""
	})

	var out strings.Builder
	var state sgrState
	last := 0

	for _, loc := range sgrPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			writeSegment(&out, text[last:loc[0]], state)
		}
		state.apply(strings.Split(text[loc[2]:loc[3]], ";"))
		last = loc[1]
	}

	if last < len(text) {
		writeSegment(&out, text[last:], state)
	}

	return out.String()
}

// StripANSI removes every recognized escape sequence, returning plain text.
func StripANSI(text string) string {
	for _, pattern := range cursorPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	text = sgrPattern.ReplaceAllString(text, "")
	return strayEscapePattern.ReplaceAllString(text, "")
}

// apply processes one SGR parameter group, mutating the cumulative state.
func (s *sgrState) apply(codes []string) {
	for i := 0; i < len(codes); i++ {
		switch code := codes[i]; code {
		case "0":
			*s = sgrState{}
		case "39":
			s.fg = ""
			s.rgbFg = ""
		case "49":
			s.bg = ""
			s.rgbBg = ""
		case "22":
			s.bold = false
			s.dim = false
		case "23":
			s.italic = false
		case "24":
			s.underline = false
		case "1":
			s.bold = true
		case "2":
			s.dim = true
		case "3":
			s.italic = true
		case "4":
			s.underline = true
		case "38":
			if i+1 < len(codes) && codes[i+1] == "2" {
				if i+4 >= len(codes) {
					// Truncated RGB parameter list. The trailing codes are
					// indistinguishable from color components, so the whole
					// group is dropped and the state stays unchanged.
					return
				}
				s.rgbFg = "color: rgb(" + codes[i+2] + ", " + codes[i+3] + ", " + codes[i+4] + ")"
				s.fg = ""
				i += 4
			}
			// 38 without ;2 (256-color palette) is ignored
		case "48":
			if i+1 < len(codes) && codes[i+1] == "2" {
				if i+4 >= len(codes) {
					return
				}
				s.rgbBg = "background-color: rgb(" + codes[i+2] + ", " + codes[i+3] + ", " + codes[i+4] + ")"
				s.bg = ""
				i += 4
			}
		default:
			if name, ok := ansiForegrounds[code]; ok {
				s.fg = "ansi-" + name
				s.rgbFg = ""
			} else if name, ok := ansiBackgrounds[code]; ok {
				s.bg = "ansi-bg-" + name
				s.rgbBg = ""
			}
			// any other code is ignored, not an error
		}
	}
}

// writeSegment emits one styled run. Unstyled text is escaped plain; styled
// text is wrapped in a span combining classes with an inline style attribute
// (the latter only for RGB overrides). Empty segments are skipped.
func writeSegment(out *strings.Builder, text string, s sgrState) {
	if text == "" {
		return
	}

	var classes, styles []string
	if s.fg != "" {
		classes = append(classes, s.fg)
	}
	if s.bg != "" {
		classes = append(classes, s.bg)
	}
	if s.bold {
		classes = append(classes, "ansi-bold")
	}
	if s.dim {
		classes = append(classes, "ansi-dim")
	}
	if s.italic {
		classes = append(classes, "ansi-italic")
	}
	if s.underline {
		classes = append(classes, "ansi-underline")
	}
	if s.rgbFg != "" {
		styles = append(styles, s.rgbFg)
	}
	if s.rgbBg != "" {
		styles = append(styles, s.rgbBg)
	}

	escaped := EscapeHTML(text)

	if len(classes) == 0 && len(styles) == 0 {
		out.WriteString(escaped)
		return
	}

	var attrs []string
	if len(classes) > 0 {
		attrs = append(attrs, `class="`+strings.Join(classes, " ")+`"`)
	}
	if len(styles) > 0 {
		attrs = append(attrs, `style="`+strings.Join(styles, "; ")+`"`)
	}

	out.WriteString("<span " + strings.Join(attrs, " ") + ">")
	out.WriteString(escaped)
	out.WriteString("</span>")
}
