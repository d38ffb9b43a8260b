package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderLineDiff renders a pair of changed lines with character-level
// highlighting: the old line as a removed block with deleted runs marked,
// the new line as an added block with inserted runs marked. Runs the two
// lines through a longest-matching-block character alignment.
func RenderLineDiff(oldLine, newLine string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(strings.TrimRight(oldLine, "\n"), strings.TrimRight(newLine, "\n"), false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var out strings.Builder

	out.WriteString("<div class='diff-line diff-removed'><span class='diff-marker'>-</span>")
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			out.WriteString(EscapeHTML(d.Text))
		case diffmatchpatch.DiffDelete:
			out.WriteString("<mark class='diff-char-removed'>" + EscapeHTML(d.Text) + "</mark>")
		}
	}
	out.WriteString("</div>")

	out.WriteString("<div class='diff-line diff-added'><span class='diff-marker'>+</span>")
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			out.WriteString(EscapeHTML(d.Text))
		case diffmatchpatch.DiffInsert:
			out.WriteString("<mark class='diff-char-added'>" + EscapeHTML(d.Text) + "</mark>")
		}
	}
	out.WriteString("</div>")

	return out.String()
}

// RenderSingleDiff renders a diff between two text blobs with intra-line
// highlighting. Lines are aligned with a line-granular diff; adjacent runs of
// deleted and inserted lines are paired strictly positionally (1st deleted
// with 1st inserted, and so on) and each pair goes through RenderLineDiff.
// Unpaired excess on either side renders as whole-line removed/added blocks,
// context lines render plain with a blank marker. The positional pairing is
// deliberate: no smarter alignment is attempted, so reordered blocks show as
// independent removals and additions.
func RenderSingleDiff(oldText, newText string) string {
	dmp := diffmatchpatch.New()

	// Line mode: each distinct line becomes one rune so the alignment is
	// line-granular; lineArray maps runes back to the original lines with
	// their terminators intact.
	runesOld, runesNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	lineDiffs := dmp.DiffMainRunes(runesOld, runesNew, false)
	lineDiffs = dmp.DiffCleanupMerge(lineDiffs)

	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			if idx := int(r); idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var out strings.Builder
	out.WriteString("<div class='edit-diff'>")

	var dels, ins []string
	flush := func() {
		paired := min(len(dels), len(ins))
		for i := 0; i < paired; i++ {
			out.WriteString(RenderLineDiff(dels[i], ins[i]))
		}
		for _, line := range dels[paired:] {
			out.WriteString("<div class='diff-line diff-removed'><span class='diff-marker'>-</span>" +
				EscapeHTML(strings.TrimRight(line, "\n")) + "</div>")
		}
		for _, line := range ins[paired:] {
			out.WriteString("<div class='diff-line diff-added'><span class='diff-marker'>+</span>" +
				EscapeHTML(strings.TrimRight(line, "\n")) + "</div>")
		}
		dels, ins = nil, nil
	}

	for _, d := range lineDiffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for _, line := range decode(d.Text) {
				out.WriteString("<div class='diff-line diff-context'><span class='diff-marker'> </span>" +
					EscapeHTML(strings.TrimRight(line, "\n")) + "</div>")
			}
		case diffmatchpatch.DiffDelete:
			dels = append(dels, decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, decode(d.Text)...)
		}
	}
	flush()

	out.WriteString("</div>")
	return out.String()
}
