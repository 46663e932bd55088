package renderer

import (
	"testing"

	"homework-transcriber/internal/document"
)

func sampleDoc() *document.Document {
	return &document.Document{
		Problems: []*document.Problem{{
			Number: 1,
			Blocks: []document.Block{
				{Kind: document.KindParagraph, Text: "Intro paragraph."},
			},
			Parts: []*document.Part{{
				Label: "a",
				Blocks: []document.Block{
					{Kind: document.KindEquationLine, Text: "$x = 2$"},
					{Kind: document.KindDisplayMath, Text: "x^2 - 4 = 0"},
				},
				SubParts: []*document.SubPart{{
					Label: "i",
					Blocks: []document.Block{{
						Kind:  document.KindProofBlock,
						Lines: []string{"Assume $x \\geq 0$.", "Done. $\\blacksquare$"},
					}},
				}},
			}},
		}},
	}
}

func TestRenderLayout(t *testing.T) {
	got := Render(sampleDoc(), document.DefaultFormat())

	want := "# Problem 1\n\n" +
		"Intro paragraph.\n\n" +
		"## a)\n\n" +
		"$x = 2$\n\n" +
		"$$ x^2 - 4 = 0 $$\n\n" +
		"### i)\n\n" +
		"> Assume $x \\geq 0$.\n> Done. $\\blacksquare$\n"

	if got != want {
		t.Errorf("rendered output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderDeterministic(t *testing.T) {
	doc := sampleDoc()
	f := document.DefaultFormat()

	first := Render(doc, f)
	for i := 0; i < 5; i++ {
		if again := Render(doc, f); again != first {
			t.Fatalf("render %d differs from first", i)
		}
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	if got := Render(&document.Document{}, document.DefaultFormat()); got != "" {
		t.Errorf("empty document rendered %q, want empty string", got)
	}
}

func TestRenderMultipleProblems(t *testing.T) {
	doc := &document.Document{
		Problems: []*document.Problem{
			{Number: 1, Blocks: []document.Block{{Kind: document.KindParagraph, Text: "First."}}},
			{Number: 2, Blocks: []document.Block{{Kind: document.KindParagraph, Text: "Second."}}},
		},
	}

	got := Render(doc, document.DefaultFormat())
	want := "# Problem 1\n\nFirst.\n\n# Problem 2\n\nSecond.\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
