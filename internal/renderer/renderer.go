// Package renderer serializes a validated document back into the canonical
// homework text format. Rendering is a pure function of the document: the
// same document always produces byte-identical output.
package renderer

import (
	"fmt"
	"strings"

	"homework-transcriber/internal/document"
)

// Render serializes the document with canonical spacing: one blank line
// between blocks, headings on their own lines, quoted proofs prefixed per
// line, display math fenced on a single line.
func Render(doc *document.Document, f document.Format) string {
	var sections []string

	for _, p := range doc.Problems {
		sections = append(sections, fmt.Sprintf("# Problem %d", p.Number))
		sections = append(sections, renderBlocks(p.Blocks, f)...)
		for _, part := range p.Parts {
			sections = append(sections, fmt.Sprintf("## %s)", part.Label))
			sections = append(sections, renderBlocks(part.Blocks, f)...)
			for _, sp := range part.SubParts {
				sections = append(sections, fmt.Sprintf("### %s)", sp.Label))
				sections = append(sections, renderBlocks(sp.Blocks, f)...)
			}
		}
	}

	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func renderBlocks(blocks []document.Block, f document.Format) []string {
	var out []string
	for _, b := range blocks {
		out = append(out, renderBlock(b, f))
	}
	return out
}

func renderBlock(b document.Block, f document.Format) string {
	switch b.Kind {
	case document.KindProofBlock:
		lines := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			lines[i] = f.ProofQuoteMarker + " " + l
		}
		return strings.Join(lines, "\n")
	case document.KindDisplayMath:
		return f.DisplayDelim + " " + b.Text + " " + f.DisplayDelim
	default:
		// Paragraphs and equation lines render as-is; their math spans are
		// already standardized.
		return b.Text
	}
}
