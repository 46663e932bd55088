// Package validator walks the document depth-first and enforces the output
// invariants: balanced math delimiters, proof blocks terminated by exactly
// one QED marker, contiguous part and sub-part labels, and no empty content
// blocks. Violations are corrected, never fatal; every action taken is
// recorded in the correction log.
package validator

import (
	"fmt"
	"strings"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/normalizer"
)

// Validate returns a corrected copy of the document and the list of
// corrections applied. It always returns a valid document.
func Validate(doc *document.Document, f document.Format) (*document.Document, []document.Correction) {
	v := &validator{format: f}
	out := doc.Clone()

	v.renumberProblems(out)

	for _, p := range out.Problems {
		loc := fmt.Sprintf("Problem %d", p.Number)
		p.Blocks = v.checkBlocks(p.Blocks, loc)
		v.relabelParts(p, loc)
		for _, part := range p.Parts {
			ploc := fmt.Sprintf("%s, part %s", loc, part.Label)
			part.Blocks = v.checkBlocks(part.Blocks, ploc)
			v.relabelSubParts(part, ploc)
			for _, sp := range part.SubParts {
				sp.Blocks = v.checkBlocks(sp.Blocks, fmt.Sprintf("%s, subpart %s", ploc, sp.Label))
			}
		}
	}

	logger.Info("document validated",
		logger.Int("problems", len(out.Problems)),
		logger.Int("corrections", len(v.corrections)))
	return out, v.corrections
}

type validator struct {
	format      document.Format
	corrections []document.Correction
}

// renumberProblems reassigns problem numbers in encounter order unless the
// parsed numbers are already positive and strictly increasing.
func (v *validator) renumberProblems(doc *document.Document) {
	ordered := true
	prev := 0
	for _, p := range doc.Problems {
		if p.Number <= prev {
			ordered = false
			break
		}
		prev = p.Number
	}
	if ordered {
		return
	}
	for i, p := range doc.Problems {
		p.Number = i + 1
	}
	v.record("document", document.CorrectionRenumbered,
		"reassigned problem numbers in encounter order")
	logger.Warn("problem numbers missing or out of order, renumbered")
}

// relabelParts forces the part sequence to a, b, c, ... with no gaps.
func (v *validator) relabelParts(p *document.Problem, loc string) {
	changed := false
	for i, part := range p.Parts {
		want := document.LetterLabel(i + 1)
		if part.Label != want {
			part.Label = want
			changed = true
		}
	}
	if changed {
		v.record(loc, document.CorrectionRelabeled, "renumbered part sequence contiguously")
		logger.Warn("part labels not contiguous, relabeled", logger.String("location", loc))
	}
}

// relabelSubParts forces the sub-part sequence to i, ii, iii, ... with no gaps.
func (v *validator) relabelSubParts(part *document.Part, loc string) {
	changed := false
	for i, sp := range part.SubParts {
		want := document.RomanLabel(i + 1)
		if sp.Label != want {
			sp.Label = want
			changed = true
		}
	}
	if changed {
		v.record(loc, document.CorrectionRelabeled, "renumbered sub-part sequence contiguously")
		logger.Warn("sub-part labels not contiguous, relabeled", logger.String("location", loc))
	}
}

// checkBlocks enforces the block-level invariants, dropping blocks that are
// empty after normalization.
func (v *validator) checkBlocks(blocks []document.Block, loc string) []document.Block {
	var kept []document.Block
	for _, b := range blocks {
		if v.isEmpty(b) {
			v.record(loc, document.CorrectionDroppedBlock,
				fmt.Sprintf("dropped empty %s block", b.Kind))
			continue
		}
		switch b.Kind {
		case document.KindProofBlock:
			b = v.checkProof(b, loc)
		case document.KindParagraph, document.KindEquationLine:
			b.Text = v.checkDelimiters(b.Text, loc)
		case document.KindDisplayMath:
			// Fence content was repaired by the normalizer; excess closing
			// braces or a leftover inline delimiter are irreparable here and
			// force an escape.
			opens, closes := braceCounts(b.Text)
			if closes > opens || containsInlineDelim(b.Text, v.format.InlineDelim) {
				b = document.Block{Kind: document.KindParagraph, Text: v.escape(b.Text, loc)}
			}
		}
		kept = append(kept, b)
	}
	return kept
}

func (v *validator) isEmpty(b document.Block) bool {
	if b.Kind == document.KindProofBlock {
		for _, l := range b.Lines {
			if strings.TrimSpace(l) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(b.Text) == ""
}

// checkProof guarantees the proof ends with exactly one QED marker and that
// the marker appears nowhere else, and validates the math on each line.
func (v *validator) checkProof(b document.Block, loc string) document.Block {
	qed := v.format.QEDSymbol
	// The marker is emitted inside inline delimiters, the way transcripts
	// carry it; a bare marker would be re-wrapped on the next pass.
	wrapped := v.format.InlineDelim + qed + v.format.InlineDelim

	total := 0
	for _, l := range b.Lines {
		total += strings.Count(l, qed)
	}

	last := len(b.Lines) - 1
	switch {
	case total == 0:
		b.Lines[last] = strings.TrimRight(b.Lines[last], " ") + " " + wrapped
		v.record(loc, document.CorrectionInsertedQED, "appended missing QED marker to proof")
		logger.Warn("proof missing QED marker, appended", logger.String("location", loc))
	case total != 1 || !endsWithQED(b.Lines[last], qed, v.format.InlineDelim):
		for i := range b.Lines {
			cleaned := strings.ReplaceAll(b.Lines[i], wrapped, "")
			cleaned = strings.ReplaceAll(cleaned, qed, "")
			b.Lines[i] = strings.TrimSpace(cleaned)
		}
		b.Lines[last] = strings.TrimRight(b.Lines[last], " ") + " " + wrapped
		v.record(loc, document.CorrectionMovedQED, "collapsed stray QED markers to proof end")
		logger.Warn("stray QED markers in proof, collapsed to end", logger.String("location", loc))
	}

	for i := range b.Lines {
		// The wrapped QED suffix is already well-formed; keep it out of the
		// delimiter check so it is never escaped.
		line, suffix := b.Lines[i], ""
		if strings.HasSuffix(line, wrapped) {
			line = strings.TrimRight(strings.TrimSuffix(line, wrapped), " ")
			suffix = " " + wrapped
		}
		b.Lines[i] = v.checkDelimiters(line, loc) + suffix
	}
	return b
}

// endsWithQED reports whether a proof line terminates with the QED marker,
// allowing for a closing inline delimiter after it.
func endsWithQED(line, qed, inline string) bool {
	t := strings.TrimSpace(line)
	t = strings.TrimSuffix(t, inline)
	t = strings.TrimSpace(t)
	return strings.HasSuffix(t, qed)
}

// checkDelimiters verifies delimiter balance on one text fragment. Spans the
// normalizer could not repair are replaced with an escaped verbatim rendering
// so the emitted document stays syntactically valid.
func (v *validator) checkDelimiters(text, loc string) string {
	spans := normalizer.ExtractSpans(text, v.format)
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if s.Balanced {
			continue
		}
		text = text[:s.Start] + v.escape(s.Raw, loc) + text[s.End:]
	}

	// A dangling delimiter at this point means the fragment bypassed the
	// normalizer; escape everything from the opener on.
	if idx := danglingDelimiter(text, v.format); idx >= 0 {
		text = text[:idx] + v.escape(text[idx:], loc)
	}
	return text
}

// danglingDelimiter returns the offset of an unmatched math delimiter, or -1.
func danglingDelimiter(text string, f document.Format) int {
	openDisplay, openInline := -1, -1
	for i := 0; i < len(text); {
		if text[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(text[i:], f.DisplayDelim) && openInline < 0 {
			if openDisplay < 0 {
				openDisplay = i
			} else {
				openDisplay = -1
			}
			i += len(f.DisplayDelim)
			continue
		}
		if strings.HasPrefix(text[i:], f.InlineDelim) && openDisplay < 0 {
			if openInline < 0 {
				openInline = i
			} else {
				openInline = -1
			}
			i += len(f.InlineDelim)
			continue
		}
		i++
	}
	if openDisplay >= 0 {
		return openDisplay
	}
	return openInline
}

// latexSpecials maps characters that would break LaTeX when emitted verbatim.
var latexSpecials = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`^`, `\^{}`,
	`~`, `\~{}`,
)

// escape wraps an irreparable span verbatim in a typewriter fallback.
func (v *validator) escape(raw, loc string) string {
	v.record(loc, document.CorrectionEscapedSpan,
		"escaped irreparable math span verbatim")
	logger.Warn("irreparable math span escaped", logger.String("location", loc))
	return `\texttt{` + latexSpecials.Replace(raw) + `}`
}

// containsInlineDelim reports whether an unescaped inline delimiter occurs
// in a display fence body. Inline math cannot nest inside a fence, so any
// occurrence would leak an unmatched delimiter into the output.
func containsInlineDelim(text, id string) bool {
	for i := 0; i < len(text); {
		if text[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(text[i:], id) {
			return true
		}
		i++
	}
	return false
}

func braceCounts(s string) (opens, closes int) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			opens++
		case '}':
			closes++
		}
	}
	return opens, closes
}

func (v *validator) record(loc string, kind document.CorrectionKind, action string) {
	v.corrections = append(v.corrections, document.Correction{
		Location: loc,
		Kind:     kind,
		Action:   action,
	})
}
