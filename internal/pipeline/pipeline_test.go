package pipeline

import (
	"errors"
	"strings"
	"testing"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/normalizer"
	"homework-transcriber/internal/types"
)

func TestConvertSolvedEquation(t *testing.T) {
	out, _, err := Convert("Problem 1\na) The roots are x = 4, -2", document.DefaultFormat())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	want := "# Problem 1\n\n## a)\n\nThe roots are $x = 4, -2$\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestConvertAppendsQED(t *testing.T) {
	raw := "# Problem 1\n\n> Assume the claim.\n> Then it holds."

	out, corrections, err := Convert(raw, document.DefaultFormat())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if !strings.Contains(out, `> Then it holds. $\blacksquare$`) {
		t.Errorf("QED marker not appended:\n%s", out)
	}
	if n := countKind(corrections, document.CorrectionInsertedQED); n != 1 {
		t.Errorf("inserted_qed corrections = %d, want 1: %+v", n, corrections)
	}
}

func TestConvertClosesUnterminatedSpan(t *testing.T) {
	raw := "# Problem 1\nWe solve $x^2 - 2x - 8 = 0"

	out, corrections, err := Convert(raw, document.DefaultFormat())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if !strings.Contains(out, "$x^2 - 2x - 8 = 0$") {
		t.Errorf("span not closed:\n%s", out)
	}
	if n := countKind(corrections, document.CorrectionClosedDelimiter); n != 1 {
		t.Errorf("closed_delimiter corrections = %d, want 1: %+v", n, corrections)
	}
}

func TestConvertEscapesInlineDelimInsideFence(t *testing.T) {
	raw := "# Problem 1\n$$a$ + b$$"

	out, corrections, err := Convert(raw, document.DefaultFormat())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if !strings.Contains(out, `$$ a\$ + b $$`) {
		t.Errorf("stray delimiter inside fence not escaped:\n%s", out)
	}
	if countKind(corrections, document.CorrectionEscapedSpan) != 1 {
		t.Errorf("missing escaped_span correction: %+v", corrections)
	}
}

func TestConvertReclassifiesRepairedFence(t *testing.T) {
	raw := "# Problem 1\n$$x^2 - 4"

	out, corrections, err := Convert(raw, document.DefaultFormat())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if !strings.Contains(out, "$$ x^2 - 4 $$") {
		t.Errorf("repaired fence not rendered as display math:\n%s", out)
	}
	if countKind(corrections, document.CorrectionClosedDelimiter) != 1 {
		t.Errorf("missing closed_delimiter correction: %+v", corrections)
	}
}

func TestConvertPromotesOrphanSubPart(t *testing.T) {
	raw := "# Problem 1\n\ni) Base case."

	out, corrections, err := Convert(raw, document.DefaultFormat())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if !strings.Contains(out, "## a)") {
		t.Errorf("promoted part heading missing:\n%s", out)
	}
	if strings.Contains(out, "### ") {
		t.Errorf("sub-part heading should not survive promotion:\n%s", out)
	}
	if countKind(corrections, document.CorrectionPromotedSubPart) != 1 {
		t.Errorf("missing promoted_subpart correction: %+v", corrections)
	}
	if countKind(corrections, document.CorrectionRelabeled) == 0 {
		t.Errorf("promoted label %q should be relabeled: %+v", "i", corrections)
	}
}

func TestConvertEmptyInput(t *testing.T) {
	_, _, err := Convert("   \n  ", document.DefaultFormat())
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrInvalidInput {
		t.Errorf("error = %v, want AppError with ErrInvalidInput", err)
	}
}

func TestConvertInvalidUTF8(t *testing.T) {
	_, _, err := Convert("Problem 1\n\xff\xfe", document.DefaultFormat())
	if err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrInvalidInput {
		t.Errorf("error = %v, want AppError with ErrInvalidInput", err)
	}
}

// Converting already-converted output must change nothing and report no
// further corrections.
func TestConvertRoundTripStable(t *testing.T) {
	inputs := []string{
		"Problem 1\na) The roots are x = 4, -2",
		"# Problem 1\n\n> Assume the claim.\n> Then it holds.",
		"# Problem 1\nWe solve $x^2 - 2x - 8 = 0",
		"# Problem 1\n\ni) Base case.\n\nii) Inductive step.",
		"# Problem 1\n$$x^2 - 4 = 0$$\n\n## a)\nLet $f(n) : = n^2$ hold.",
		"# Problem 1\n$$x^2 - 4",
		"# Problem 1\n$$a$ + b$$",
	}

	f := document.DefaultFormat()
	for _, raw := range inputs {
		first, _, err := Convert(raw, f)
		if err != nil {
			t.Fatalf("first Convert(%q): %v", raw, err)
		}
		second, corrections, err := Convert(first, f)
		if err != nil {
			t.Fatalf("second Convert(%q): %v", raw, err)
		}
		if second != first {
			t.Errorf("round trip unstable for %q:\nfirst:\n%s\nsecond:\n%s", raw, first, second)
		}
		if len(corrections) != 0 {
			t.Errorf("round trip of %q applied corrections: %+v", raw, corrections)
		}
	}
}

// Every math span in converted output must be balanced, whatever the input
// looked like.
func TestConvertOutputSpansBalanced(t *testing.T) {
	inputs := []string{
		"Problem 1\nBroken $\\frac{1}{2$ fraction.",
		"# Problem 1\nStray $x with no close",
		"# Problem 1\na) x^2 + 1\n\nb) Compute $17 % 5 = 2$.",
		"# Problem 1\n> Proof with $unclosed math\n> next line.",
		"# Problem 1\n$$a$ + b$$",
		"# Problem 1\na) Compute $3 % 4 % 5$.",
	}

	f := document.DefaultFormat()
	for _, raw := range inputs {
		out, _, err := Convert(raw, f)
		if err != nil {
			t.Fatalf("Convert(%q): %v", raw, err)
		}
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimPrefix(strings.TrimSpace(line), f.ProofQuoteMarker)
			for _, s := range normalizer.ExtractSpans(line, f) {
				if !s.Balanced {
					t.Errorf("input %q produced unbalanced span %q in line %q", raw, s.Raw, line)
				}
			}
			if strings.Count(strings.ReplaceAll(line, `\$`, ""), "$")%2 != 0 {
				t.Errorf("input %q produced odd delimiter count in line %q", raw, line)
			}
		}
	}
}

func TestParseReturnsValidatedDocument(t *testing.T) {
	doc, _, err := Parse("# Problem 1\n\n## c)\nContent.", document.DefaultFormat())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Problems) != 1 {
		t.Fatalf("got %d problems", len(doc.Problems))
	}
	if got := doc.Problems[0].Parts[0].Label; got != "a" {
		t.Errorf("part label = %q, want relabeled a", got)
	}
}

func countKind(corrections []document.Correction, kind document.CorrectionKind) int {
	n := 0
	for _, c := range corrections {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
