package render

import (
	"strings"
	"testing"
)

func TestRenderLineDiffCharacterMarks(t *testing.T) {
	got := RenderLineDiff("bar", "baz")

	if !strings.Contains(got, "<mark class='diff-char-removed'>r</mark>") {
		t.Errorf("expected 'r' marked as removed, got %q", got)
	}
	if !strings.Contains(got, "<mark class='diff-char-added'>z</mark>") {
		t.Errorf("expected 'z' marked as added, got %q", got)
	}
	// The shared prefix stays unmarked in both halves.
	if !strings.Contains(got, "<span class='diff-marker'>-</span>ba<mark") {
		t.Errorf("shared prefix should be plain in the removed line, got %q", got)
	}
	if !strings.Contains(got, "<span class='diff-marker'>+</span>ba<mark") {
		t.Errorf("shared prefix should be plain in the added line, got %q", got)
	}
}

func TestRenderLineDiffEscapesContent(t *testing.T) {
	got := RenderLineDiff("<a>", "<b>")
	if strings.Contains(got, "<a>") || strings.Contains(got, "<b>") {
		t.Errorf("line content must be escaped, got %q", got)
	}
	if !strings.Contains(got, "&lt;") {
		t.Errorf("expected escaped angle brackets in %q", got)
	}
}

func TestRenderSingleDiffPairsPositionally(t *testing.T) {
	oldText := "alpha\nfirst old\nsecond old\nomega\n"
	newText := "alpha\nfirst new\nsecond new\nomega\n"

	got := RenderSingleDiff(oldText, newText)

	if !strings.HasPrefix(got, "<div class='edit-diff'>") || !strings.HasSuffix(got, "</div>") {
		t.Fatalf("missing edit-diff wrapper: %q", got)
	}
	if strings.Count(got, "diff-context") != 2 {
		t.Errorf("expected 2 context lines, got %q", got)
	}
	// Two changed pairs, each with char-level marks.
	if strings.Count(got, "diff-char-removed") == 0 || strings.Count(got, "diff-char-added") == 0 {
		t.Errorf("paired lines should carry character marks, got %q", got)
	}
	if strings.Count(got, "diff-line diff-removed") != 2 {
		t.Errorf("expected 2 removed lines, got %q", got)
	}
	if strings.Count(got, "diff-line diff-added") != 2 {
		t.Errorf("expected 2 added lines, got %q", got)
	}
}

func TestRenderSingleDiffUnpairedLines(t *testing.T) {
	// Two deletions against one insertion: the excess deletion renders as a
	// whole removed line without character marks.
	got := RenderSingleDiff("keep\ngone one\ngone two\n", "keep\nreplacement\n")

	if strings.Count(got, "diff-line diff-removed") != 2 {
		t.Errorf("expected 2 removed lines, got %q", got)
	}
	if strings.Count(got, "diff-line diff-added") != 1 {
		t.Errorf("expected 1 added line, got %q", got)
	}
}

func TestRenderSingleDiffPureInsertion(t *testing.T) {
	got := RenderSingleDiff("a\nb\n", "a\nnew\nb\n")

	if strings.Count(got, "diff-line diff-added") != 1 {
		t.Errorf("expected 1 added line, got %q", got)
	}
	if strings.Contains(got, "diff-line diff-removed") {
		t.Errorf("pure insertion must have no removed lines, got %q", got)
	}
	if strings.Contains(got, "diff-char-added") {
		t.Errorf("unpaired insertion must not carry character marks, got %q", got)
	}
}

var diffUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&amp;", "&",
)

// plainDiffLine strips the marker span, character marks, and entity escaping
// from the body of a rendered diff line, leaving the source text.
func plainDiffLine(t *testing.T, body string) string {
	t.Helper()
	_, text, ok := strings.Cut(body, "</span>")
	if !ok {
		t.Fatalf("diff line missing marker span: %q", body)
	}
	text = strings.ReplaceAll(text, "<mark class='diff-char-removed'>", "")
	text = strings.ReplaceAll(text, "<mark class='diff-char-added'>", "")
	text = strings.ReplaceAll(text, "</mark>", "")
	return diffUnescaper.Replace(text)
}

func TestRenderSingleDiffReconstructsBothSides(t *testing.T) {
	oldText := "func fetch(url string) error {\n\tif retries < 1 && url != \"\" {\n\t\treturn errTooFew\n\t}\n\treturn get(url)\n}\n"
	newText := "func fetch(ctx context.Context, url string) error {\n\tif retries < 1 && url != \"\" {\n\t\treturn errTooFew\n\t}\n\treturn get(ctx, url)\n}\n"

	got := RenderSingleDiff(oldText, newText)

	// Removed and context lines reassemble the old text, added and context
	// lines the new text, in order.
	var oldLines, newLines []string
	for _, block := range strings.Split(got, "<div class='diff-line ")[1:] {
		class, rest, ok := strings.Cut(block, "'>")
		if !ok {
			t.Fatalf("malformed diff line block: %q", block)
		}
		body, _, ok := strings.Cut(rest, "</div>")
		if !ok {
			t.Fatalf("unterminated diff line block: %q", block)
		}
		text := plainDiffLine(t, body)
		switch class {
		case "diff-removed":
			oldLines = append(oldLines, text)
		case "diff-added":
			newLines = append(newLines, text)
		case "diff-context":
			oldLines = append(oldLines, text)
			newLines = append(newLines, text)
		default:
			t.Fatalf("unexpected diff line class %q", class)
		}
	}

	wantOld := strings.Split(strings.TrimRight(oldText, "\n"), "\n")
	wantNew := strings.Split(strings.TrimRight(newText, "\n"), "\n")
	if strings.Join(oldLines, "\n") != strings.Join(wantOld, "\n") {
		t.Errorf("removed+context lines = %q, want %q", oldLines, wantOld)
	}
	if strings.Join(newLines, "\n") != strings.Join(wantNew, "\n") {
		t.Errorf("added+context lines = %q, want %q", newLines, wantNew)
	}
}

func TestRenderSingleDiffIdenticalInput(t *testing.T) {
	got := RenderSingleDiff("same\nlines\n", "same\nlines\n")

	if strings.Contains(got, "diff-removed") || strings.Contains(got, "diff-added") {
		t.Errorf("identical input must yield only context lines, got %q", got)
	}
	if strings.Count(got, "diff-context") != 2 {
		t.Errorf("expected 2 context lines, got %q", got)
	}
}
