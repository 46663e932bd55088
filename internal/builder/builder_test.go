package builder

import (
	"testing"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/tokenizer"
)

func build(t *testing.T, raw string) (*document.Document, []document.Correction) {
	t.Helper()
	f := document.DefaultFormat()
	return Build(tokenizer.Segment(raw, f), f)
}

func TestBuildHierarchy(t *testing.T) {
	raw := "# Problem 1\nIntro text.\n\n## a)\nFirst part.\n\n### i)\nFirst subpart.\n\n### ii)\nSecond subpart.\n\n## b)\nSecond part."

	doc, corrections := build(t, raw)

	if len(corrections) != 0 {
		t.Fatalf("unexpected corrections: %+v", corrections)
	}
	if len(doc.Problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(doc.Problems))
	}
	p := doc.Problems[0]
	if p.Number != 1 {
		t.Errorf("problem number = %d, want 1", p.Number)
	}
	if len(p.Blocks) != 1 || p.Blocks[0].Text != "Intro text." {
		t.Errorf("problem-level blocks = %+v", p.Blocks)
	}
	if len(p.Parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(p.Parts))
	}
	a := p.Parts[0]
	if a.Label != "a" || len(a.SubParts) != 2 {
		t.Fatalf("part a = %+v", a)
	}
	if a.SubParts[0].Label != "i" || a.SubParts[1].Label != "ii" {
		t.Errorf("subpart labels = %q, %q", a.SubParts[0].Label, a.SubParts[1].Label)
	}
	if len(a.SubParts[0].Blocks) != 1 || a.SubParts[0].Blocks[0].Text != "First subpart." {
		t.Errorf("subpart i blocks = %+v", a.SubParts[0].Blocks)
	}
	if p.Parts[1].Label != "b" {
		t.Errorf("second part label = %q, want b", p.Parts[1].Label)
	}
}

func TestBuildPromotesOrphanSubPart(t *testing.T) {
	raw := "# Problem 1\n\n### i)\nContent."

	doc, corrections := build(t, raw)

	p := doc.Problems[0]
	if len(p.Parts) != 1 {
		t.Fatalf("got %d parts, want 1 promoted part", len(p.Parts))
	}
	if p.Parts[0].Label != "i" {
		t.Errorf("promoted part label = %q, want i", p.Parts[0].Label)
	}
	if len(p.Parts[0].SubParts) != 0 {
		t.Errorf("promoted part should have no sub-parts, got %d", len(p.Parts[0].SubParts))
	}
	if !hasCorrection(corrections, document.CorrectionPromotedSubPart) {
		t.Errorf("missing promoted_subpart correction, got %+v", corrections)
	}
}

func TestBuildCreatesProblemForOrphanPart(t *testing.T) {
	raw := "a) Orphan part content."

	doc, corrections := build(t, raw)

	if len(doc.Problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(doc.Problems))
	}
	if doc.Problems[0].Number != 1 {
		t.Errorf("created problem number = %d, want 1", doc.Problems[0].Number)
	}
	if len(doc.Problems[0].Parts) != 1 || doc.Problems[0].Parts[0].Label != "a" {
		t.Fatalf("parts = %+v", doc.Problems[0].Parts)
	}
	if !hasCorrection(corrections, document.CorrectionCreatedProblem) {
		t.Errorf("missing created_problem correction, got %+v", corrections)
	}
}

func TestBuildCreatesProblemForLeadingContent(t *testing.T) {
	raw := "Some preamble before any heading."

	doc, corrections := build(t, raw)

	if len(doc.Problems) != 1 {
		t.Fatalf("got %d problems, want 1", len(doc.Problems))
	}
	if len(doc.Problems[0].Blocks) != 1 {
		t.Fatalf("blocks = %+v", doc.Problems[0].Blocks)
	}
	if !hasCorrection(corrections, document.CorrectionCreatedProblem) {
		t.Errorf("missing created_problem correction, got %+v", corrections)
	}
}

func TestBuildProofSurvivesBlankLines(t *testing.T) {
	raw := "# Problem 1\n\n> First step.\n\n> Second step.\n\nAfter the proof."

	doc, _ := build(t, raw)

	blocks := doc.Problems[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want proof + paragraph: %+v", len(blocks), blocks)
	}
	proof := blocks[0]
	if proof.Kind != document.KindProofBlock {
		t.Fatalf("first block kind = %q, want proof", proof.Kind)
	}
	if len(proof.Lines) != 2 || proof.Lines[0] != "First step." || proof.Lines[1] != "Second step." {
		t.Errorf("proof lines = %+v", proof.Lines)
	}
	if blocks[1].Kind != document.KindParagraph {
		t.Errorf("second block kind = %q, want paragraph", blocks[1].Kind)
	}
}

func TestBuildTextLineEndsProof(t *testing.T) {
	raw := "# Problem 1\n> Quoted step.\nPlain prose line."

	doc, _ := build(t, raw)

	blocks := doc.Problems[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(blocks), blocks)
	}
	if blocks[0].Kind != document.KindProofBlock {
		t.Errorf("first block kind = %q, want proof", blocks[0].Kind)
	}
	if blocks[1].Kind != document.KindParagraph {
		t.Errorf("second block kind = %q, want paragraph", blocks[1].Kind)
	}
}

func TestBuildDisplayMathBlock(t *testing.T) {
	raw := "# Problem 1\n$$x^2 - 4 = 0$$"

	doc, _ := build(t, raw)

	blocks := doc.Problems[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Kind != document.KindDisplayMath {
		t.Errorf("kind = %q, want display math", blocks[0].Kind)
	}
	if blocks[0].Text != "x^2 - 4 = 0" {
		t.Errorf("text = %q", blocks[0].Text)
	}
}

func TestBuildEquationLineReclassification(t *testing.T) {
	tests := []struct {
		name string
		line string
		want document.BlockKind
	}{
		{"plain equality with digits", "x = 2", document.KindEquationLine},
		{"definition sign", "f(n) := n^2", document.KindEquationLine},
		{"prose with equals but no math", "Equality means left = right", document.KindParagraph},
		{"prose without equality", "Therefore the claim holds.", document.KindParagraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := build(t, "# Problem 1\n"+tt.line)
			blocks := doc.Problems[0].Blocks
			if len(blocks) != 1 {
				t.Fatalf("got %d blocks, want 1", len(blocks))
			}
			if blocks[0].Kind != tt.want {
				t.Errorf("kind = %q, want %q", blocks[0].Kind, tt.want)
			}
		})
	}
}

func TestBuildMultiLineParagraphStaysParagraph(t *testing.T) {
	raw := "# Problem 1\nWe compute\nx = 2"

	doc, _ := build(t, raw)

	blocks := doc.Problems[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Kind != document.KindParagraph {
		t.Errorf("kind = %q, want paragraph", blocks[0].Kind)
	}
	if blocks[0].Text != "We compute\nx = 2" {
		t.Errorf("text = %q", blocks[0].Text)
	}
}

func hasCorrection(corrections []document.Correction, kind document.CorrectionKind) bool {
	for _, c := range corrections {
		if c.Kind == kind {
			return true
		}
	}
	return false
}
