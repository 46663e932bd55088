// Package builder assembles classified lines into the hierarchical homework
// document model. It maintains a depth-aware stack of open containers and
// recovers from the structural anomalies recognized text commonly carries:
// parts without an enclosing problem, sub-parts without an enclosing part.
package builder

import (
	"fmt"
	"regexp"
	"strings"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/tokenizer"
)

// builder holds the open-container state while consuming the line sequence.
type builder struct {
	format document.Format

	doc        *document.Document
	curProblem *document.Problem
	curPart    *document.Part
	curSubPart *document.SubPart

	para  []string
	proof []string

	corrections []document.Correction
}

// Build consumes the classified line sequence and produces a Document plus
// the list of structural corrections applied while building it.
func Build(lines []tokenizer.Line, f document.Format) (*document.Document, []document.Correction) {
	b := &builder{
		format: f,
		doc:    &document.Document{},
	}

	for _, line := range lines {
		b.process(line)
	}
	b.flushBlocks()

	logger.Debug("document built",
		logger.Int("problems", len(b.doc.Problems)),
		logger.Int("corrections", len(b.corrections)))

	return b.doc, b.corrections
}

// process dispatches one line to the state machine.
func (b *builder) process(line tokenizer.Line) {
	switch line.Kind {
	case tokenizer.LineProblemHeading:
		b.flushBlocks()
		b.curSubPart = nil
		b.curPart = nil
		b.curProblem = &document.Problem{Number: line.Number}
		b.doc.Problems = append(b.doc.Problems, b.curProblem)
		if line.Text != "" {
			b.para = append(b.para, line.Text)
		}

	case tokenizer.LinePartMarker:
		b.flushBlocks()
		b.openPart(line.Label)
		if line.Text != "" {
			b.para = append(b.para, line.Text)
		}

	case tokenizer.LineSubPartMarker:
		b.flushBlocks()
		if b.curPart == nil {
			// Recognized text commonly drops the intermediate part marker.
			// Promote the sub-part to a part instead of failing; the
			// validator relabels the sequence afterwards.
			b.openPart(line.Label)
			b.record(document.CorrectionPromotedSubPart,
				fmt.Sprintf("promoted sub-part marker %q to a part", line.Label+")"))
			logger.Warn("sub-part marker without open part, promoted to part",
				logger.String("label", line.Label))
		} else {
			b.curSubPart = &document.SubPart{Label: line.Label}
			b.curPart.SubParts = append(b.curPart.SubParts, b.curSubPart)
		}
		if line.Text != "" {
			b.para = append(b.para, line.Text)
		}

	case tokenizer.LineBlockquote:
		b.flushParagraph()
		b.proof = append(b.proof, line.Text)

	case tokenizer.LineDisplayMath:
		b.flushBlocks()
		b.appendBlock(document.Block{Kind: document.KindDisplayMath, Text: line.Text})

	case tokenizer.LineBlank:
		// A blank line terminates a paragraph. It does not terminate a proof:
		// transcripts space quoted proof lines apart with blank lines.
		b.flushParagraph()

	case tokenizer.LineText:
		b.flushProof()
		b.para = append(b.para, line.Text)
	}
}

// openPart closes any open sub-part and opens a new part under the current
// problem, creating a problem first when none is open.
func (b *builder) openPart(label string) {
	if b.curProblem == nil {
		b.curProblem = &document.Problem{Number: len(b.doc.Problems) + 1}
		b.doc.Problems = append(b.doc.Problems, b.curProblem)
		b.record(document.CorrectionCreatedProblem,
			fmt.Sprintf("created problem %d for orphan marker %q", b.curProblem.Number, label+")"))
		logger.Warn("part marker without open problem, created one",
			logger.String("label", label))
	}
	b.curSubPart = nil
	b.curPart = &document.Part{Label: label}
	b.curProblem.Parts = append(b.curProblem.Parts, b.curPart)
}

// flushBlocks closes both accumulators.
func (b *builder) flushBlocks() {
	b.flushProof()
	b.flushParagraph()
}

// flushParagraph finishes the accumulated paragraph, reclassifying a lone
// line carrying an equation as an equation-line block.
func (b *builder) flushParagraph() {
	if len(b.para) == 0 {
		return
	}
	text := strings.Join(b.para, "\n")
	b.para = nil

	kind := document.KindParagraph
	if len(strings.Split(text, "\n")) == 1 && looksLikeEquation(text) {
		kind = document.KindEquationLine
	}
	b.appendBlock(document.Block{Kind: kind, Text: text})
}

// flushProof finishes the accumulated proof block.
func (b *builder) flushProof() {
	if len(b.proof) == 0 {
		return
	}
	lines := b.proof
	b.proof = nil
	b.appendBlock(document.Block{Kind: document.KindProofBlock, Lines: lines})
}

// appendBlock attaches a block to the innermost open container. Content with
// no open problem at all gets a problem created for it.
func (b *builder) appendBlock(block document.Block) {
	if b.curProblem == nil {
		b.curProblem = &document.Problem{Number: len(b.doc.Problems) + 1}
		b.doc.Problems = append(b.doc.Problems, b.curProblem)
		b.record(document.CorrectionCreatedProblem,
			fmt.Sprintf("created problem %d for leading content", b.curProblem.Number))
		logger.Warn("content before first problem heading, created problem")
	}
	switch {
	case b.curSubPart != nil:
		b.curSubPart.Blocks = append(b.curSubPart.Blocks, block)
	case b.curPart != nil:
		b.curPart.Blocks = append(b.curPart.Blocks, block)
	default:
		b.curProblem.Blocks = append(b.curProblem.Blocks, block)
	}
}

// record appends a structural correction at the current location.
func (b *builder) record(kind document.CorrectionKind, action string) {
	b.corrections = append(b.corrections, document.Correction{
		Location: b.location(),
		Kind:     kind,
		Action:   action,
	})
}

// location describes the innermost open container for diagnostics.
func (b *builder) location() string {
	if b.curProblem == nil {
		return "document"
	}
	loc := fmt.Sprintf("Problem %d", b.curProblem.Number)
	if b.curPart != nil {
		loc += fmt.Sprintf(", part %s", b.curPart.Label)
	}
	if b.curSubPart != nil {
		loc += fmt.Sprintf(", subpart %s", b.curSubPart.Label)
	}
	return loc
}

// equationMarkers matches a bare "=" (not "==", ":=" handled separately).
var equationMarkers = regexp.MustCompile(`(^|[^=:<>!])=($|[^=])`)

// looksLikeEquation reports whether a single line carries a free-standing
// computed expression: an equality plus at least one math-bearing character.
func looksLikeEquation(text string) bool {
	if !equationMarkers.MatchString(text) && !strings.Contains(text, ":=") {
		return false
	}
	return strings.ContainsAny(text, "0123456789\\^_")
}
