// Package normalizer repairs and standardizes math delimiters inside content
// blocks: closing unterminated spans, wrapping bare math expressions,
// balancing braces, and canonicalizing known misrecognitions. The stage is
// idempotent; repaired blocks are marked and skipped on re-entry.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/logger"
)

// Normalize returns a normalized copy of the document and the list of
// delimiter corrections applied. The input document is not mutated.
func Normalize(doc *document.Document, f document.Format) (*document.Document, []document.Correction) {
	n := &normalizer{format: f}
	out := doc.Clone()

	for _, p := range out.Problems {
		loc := fmt.Sprintf("Problem %d", p.Number)
		n.normalizeBlocks(p.Blocks, loc)
		for _, part := range p.Parts {
			ploc := fmt.Sprintf("%s, part %s", loc, part.Label)
			n.normalizeBlocks(part.Blocks, ploc)
			for _, sp := range part.SubParts {
				n.normalizeBlocks(sp.Blocks, fmt.Sprintf("%s, subpart %s", ploc, sp.Label))
			}
		}
	}

	if len(n.corrections) > 0 {
		logger.Info("delimiter normalization applied",
			logger.Int("corrections", len(n.corrections)))
	}
	return out, n.corrections
}

type normalizer struct {
	format      document.Format
	corrections []document.Correction
}

func (n *normalizer) normalizeBlocks(blocks []document.Block, loc string) {
	for i := range blocks {
		n.normalizeBlock(&blocks[i], loc)
	}
}

// normalizeBlock repairs one block in place. Already-normalized blocks are
// skipped, which makes the stage idempotent at the document level.
func (n *normalizer) normalizeBlock(b *document.Block, loc string) {
	if b.Normalized {
		return
	}
	switch b.Kind {
	case document.KindParagraph, document.KindEquationLine:
		b.Text = n.normalizeText(b.Text, loc, b.Kind == document.KindEquationLine)
		if b.Kind == document.KindParagraph {
			// Closing an unterminated fence can leave a paragraph that is
			// nothing but display math. Reclassify it so the block carries
			// the same kind a re-parse of the rendered line would produce.
			if body, ok := wholeDisplayFence(b.Text, n.format); ok {
				b.Kind = document.KindDisplayMath
				b.Text = n.escapeStrayInline(body, loc)
			}
		}
	case document.KindDisplayMath:
		// Fenced math carries no fences of its own; stray inline
		// delimiters, braces, and misrecognitions need repair.
		b.Text = n.canonicalize(b.Text, loc)
		b.Text = n.escapeStrayInline(b.Text, loc)
		b.Text = n.repairBraces(b.Text, loc)
	case document.KindProofBlock:
		// Quoted proof lines embed inline spans like any paragraph; the
		// balance invariant has to hold there too.
		for i := range b.Lines {
			b.Lines[i] = n.normalizeText(b.Lines[i], loc, false)
		}
	}
	b.Normalized = true
}

// normalizeText runs the full repair sequence over one text fragment.
func (n *normalizer) normalizeText(text, loc string, equation bool) string {
	text = n.canonicalize(text, loc)
	text = n.closeDelimiters(text, loc)
	text = n.wrapBareMath(text, loc, equation)
	text = n.repairSpanBraces(text, loc)
	return text
}

var (
	// ": =" is a common recognizer whitespace error for the definition sign
	defSignPattern = regexp.MustCompile(`:\s+=`)
	// A percent sign between numbers is handwriting for the modulo operator
	moduloPattern = regexp.MustCompile(`(\d)\s*\\?%\s*(\d)`)
)

// canonicalize rewrites known recognizer misreadings into their LaTeX forms.
func (n *normalizer) canonicalize(text, loc string) string {
	out := text
	if defSignPattern.MatchString(out) {
		out = defSignPattern.ReplaceAllString(out, ":=")
		n.record(loc, document.CorrectionCanonicalized, `rewrote ": =" as ":="`)
	}
	if moduloPattern.MatchString(out) {
		// Chained operators share operand digits ("3 % 4 % 5"), so a single
		// replacement pass misses every other match. Each pass removes at
		// least one "%", so the loop terminates.
		for moduloPattern.MatchString(out) {
			out = moduloPattern.ReplaceAllString(out, `$1 \bmod $2`)
		}
		n.record(loc, document.CorrectionCanonicalized, `rewrote numeric "%" as "\bmod"`)
	}
	return out
}

// wholeDisplayFence reports whether text is a single complete display fence,
// mirroring the tokenizer's line classification, and returns the body with
// the fences and padding stripped.
func wholeDisplayFence(text string, f document.Format) (string, bool) {
	dd := f.DisplayDelim
	t := strings.TrimSpace(text)
	if len(t) <= 2*len(dd) || !strings.HasPrefix(t, dd) || !strings.HasSuffix(t, dd) {
		return "", false
	}
	return strings.TrimSpace(t[len(dd) : len(t)-len(dd)]), true
}

// escapeStrayInline escapes inline delimiters occurring inside a display
// fence body. Inline math cannot nest inside a fence, so every occurrence is
// a recognition artifact that would leak an unmatched delimiter downstream.
func (n *normalizer) escapeStrayInline(text, loc string) string {
	id := n.format.InlineDelim
	var sb strings.Builder
	escaped := 0
	for i := 0; i < len(text); {
		if text[i] == '\\' {
			end := i + 2
			if end > len(text) {
				end = len(text)
			}
			sb.WriteString(text[i:end])
			i = end
			continue
		}
		if strings.HasPrefix(text[i:], id) {
			sb.WriteString(`\`)
			sb.WriteString(id)
			i += len(id)
			escaped++
			continue
		}
		sb.WriteByte(text[i])
		i++
	}
	if escaped == 0 {
		return text
	}
	n.record(loc, document.CorrectionEscapedSpan,
		fmt.Sprintf("escaped %d stray inline delimiter(s) inside display math", escaped))
	return sb.String()
}

// closeDelimiters closes an odd display fence at the end of the text and an
// odd inline delimiter at the nearest clause boundary.
func (n *normalizer) closeDelimiters(text, loc string) string {
	openDisplay, openInline := scanDelimiters(text, n.format)

	if openDisplay >= 0 {
		text += n.format.DisplayDelim
		n.record(loc, document.CorrectionClosedDelimiter,
			fmt.Sprintf("appended closing %q", n.format.DisplayDelim))
		// Re-scan: the inline state may have been an artifact of the
		// unterminated fence.
		_, openInline = scanDelimiters(text, n.format)
	}

	if openInline >= 0 {
		at := clauseBoundary(text, openInline+1)
		text = text[:at] + n.format.InlineDelim + text[at:]
		n.record(loc, document.CorrectionClosedDelimiter,
			fmt.Sprintf("inserted closing %q at clause boundary", n.format.InlineDelim))
	}
	return text
}

// scanDelimiters walks the text tracking display and inline math state.
// It returns the byte offsets of an unmatched display fence and an unmatched
// inline delimiter, or -1 for each when the text is balanced. Escaped
// dollars ("\$") are ignored.
func scanDelimiters(text string, f document.Format) (openDisplay, openInline int) {
	openDisplay, openInline = -1, -1
	dd, id := f.DisplayDelim, f.InlineDelim
	for i := 0; i < len(text); {
		if text[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(text[i:], dd) && openInline < 0 {
			if openDisplay < 0 {
				openDisplay = i
			} else {
				openDisplay = -1
			}
			i += len(dd)
			continue
		}
		if strings.HasPrefix(text[i:], id) && openDisplay < 0 {
			if openInline < 0 {
				openInline = i
			} else {
				openInline = -1
			}
			i += len(id)
			continue
		}
		i++
	}
	return openDisplay, openInline
}

// clauseBoundary finds the insertion point for a missing closing delimiter:
// the nearest sentence or clause boundary at or after from. A comma followed
// by more math (a digit, sign, or command) is part of a merged equation list
// and is not a boundary.
func clauseBoundary(text string, from int) int {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '.', ';':
			return i
		case ',':
			j := i + 1
			for j < len(text) && text[j] == ' ' {
				j++
			}
			if j < len(text) {
				c := text[j]
				if c == '-' || c == '+' || c == '\\' || (c >= '0' && c <= '9') {
					continue
				}
			}
			return i
		}
	}
	return len(text)
}

// mathTrigger matches content that only occurs inside math: a command name,
// an exponent, or a subscript marker.
var mathTrigger = regexp.MustCompile(`\\[a-zA-Z]+|[\^_]`)

// wrapBareMath wraps the minimal enclosing token span in inline delimiters
// when math-trigger symbols are present but no delimiters are. For equation
// lines the equality sign itself counts as a trigger.
func (n *normalizer) wrapBareMath(text, loc string, equation bool) string {
	if strings.Contains(text, n.format.InlineDelim) {
		return text
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return text
	}

	first, last := -1, -1
	for i, tok := range tokens {
		if mathTrigger.MatchString(tok) || (equation && isEqualityToken(tok)) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return text
	}

	// Expand across neighboring math tokens so a split expression like
	// "x^2 + 1" is wrapped whole.
	for first > 0 && isMathToken(tokens[first-1]) {
		first--
	}
	for last < len(tokens)-1 && isMathToken(tokens[last+1]) {
		last++
	}

	id := n.format.InlineDelim
	tokens[first] = id + tokens[first]
	tokens[last] = tokens[last] + id
	n.record(loc, document.CorrectionWrappedMath,
		fmt.Sprintf("wrapped bare math span in %q delimiters", id))
	return strings.Join(tokens, " ")
}

func isEqualityToken(tok string) bool {
	return tok == "=" || tok == ":=" || strings.Contains(tok, "=")
}

// isMathToken reports whether a token plausibly belongs to an adjacent math
// expression: digits, operators, commands, or a lone variable letter.
func isMathToken(tok string) bool {
	if tok == "" {
		return false
	}
	trimmed := strings.TrimRight(tok, ",;.")
	if trimmed == "" {
		return false
	}
	if len(trimmed) == 1 {
		c := trimmed[0]
		return c == '+' || c == '-' || c == '=' || c == '<' || c == '>' ||
			(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	}
	if mathTrigger.MatchString(trimmed) {
		return true
	}
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}

// repairSpanBraces balances braces inside each delimited math span.
func (n *normalizer) repairSpanBraces(text, loc string) string {
	spans := ExtractSpans(text, n.format)
	if len(spans) == 0 {
		return text
	}
	// Rebuild from the back so span offsets stay valid.
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		opens, closes := countBraces(s.Raw)
		if opens > closes {
			closing := strings.Repeat("}", opens-closes)
			delim := n.format.InlineDelim
			if s.Display {
				delim = n.format.DisplayDelim
			}
			insertAt := s.End - len(delim)
			text = text[:insertAt] + closing + text[insertAt:]
			n.record(loc, document.CorrectionClosedBraces,
				fmt.Sprintf("appended %d closing brace(s) to math span", opens-closes))
		}
	}
	return text
}

// repairBraces balances braces in fence-free math text (display blocks).
func (n *normalizer) repairBraces(text, loc string) string {
	opens, closes := countBraces(text)
	if opens > closes {
		text += strings.Repeat("}", opens-closes)
		n.record(loc, document.CorrectionClosedBraces,
			fmt.Sprintf("appended %d closing brace(s) to display math", opens-closes))
	}
	return text
}

// countBraces counts unescaped braces.
func countBraces(s string) (opens, closes int) {
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

// ExtractSpans scans text for delimited math spans. Spans left unmatched by
// the scan are not returned; closeDelimiters runs first so a normalized
// block never has any.
func ExtractSpans(text string, f document.Format) []document.MathSpan {
	var spans []document.MathSpan
	dd, id := f.DisplayDelim, f.InlineDelim

	for i := 0; i < len(text); {
		if text[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(text[i:], dd) {
			end := indexFrom(text, dd, i+len(dd))
			if end < 0 {
				break
			}
			raw := text[i+len(dd) : end]
			opens, closes := countBraces(raw)
			spans = append(spans, document.MathSpan{
				Raw:      raw,
				Display:  true,
				Balanced: opens == closes,
				Start:    i,
				End:      end + len(dd),
			})
			i = end + len(dd)
			continue
		}
		if strings.HasPrefix(text[i:], id) {
			end := indexFrom(text, id, i+len(id))
			if end < 0 {
				break
			}
			raw := text[i+len(id) : end]
			opens, closes := countBraces(raw)
			spans = append(spans, document.MathSpan{
				Raw:      raw,
				Display:  false,
				Balanced: opens == closes,
				Start:    i,
				End:      end + len(id),
			})
			i = end + len(id)
			continue
		}
		i++
	}
	return spans
}

// indexFrom finds the next unescaped occurrence of delim at or after from.
func indexFrom(text, delim string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(text[i:], delim) {
			return i
		}
	}
	return -1
}

func (n *normalizer) record(loc string, kind document.CorrectionKind, action string) {
	n.corrections = append(n.corrections, document.Correction{
		Location: loc,
		Kind:     kind,
		Action:   action,
	})
}
