// Package tokenizer segments raw recognized text into classified structural
// lines. Classification is a total decision table over line prefixes;
// ambiguous lines fall through to plain text so no spurious structure is
// created from prose.
package tokenizer

import (
	"regexp"
	"strconv"
	"strings"

	"homework-transcriber/internal/document"
)

// LineKind classifies a structural line.
type LineKind string

const (
	// LineBlank is an empty or whitespace-only line
	LineBlank LineKind = "blank"
	// LineProblemHeading opens a new problem, e.g. "# Problem 1"
	LineProblemHeading LineKind = "problem_heading"
	// LinePartMarker opens a new lettered part, e.g. "## a)"
	LinePartMarker LineKind = "part_marker"
	// LineSubPartMarker opens a new roman-numeraled sub-part, e.g. "### i)"
	LineSubPartMarker LineKind = "subpart_marker"
	// LineBlockquote is a quoted proof line, e.g. "> $a \geq 0$"
	LineBlockquote LineKind = "blockquote"
	// LineDisplayMath is a single-line display math fence, e.g. "$$ x^2 $$"
	LineDisplayMath LineKind = "display_math"
	// LineText is everything else
	LineText LineKind = "text"
)

// Line is one classified input line.
type Line struct {
	Kind LineKind
	// Number is the parsed problem number for heading lines (0 when absent)
	Number int
	// Label is the marker label for part and sub-part lines, paren stripped
	Label string
	// Text is the remaining content: heading trailer, marker trailer, quoted
	// proof content, display math body, or the trimmed text itself
	Text string
	// Raw is the original line
	Raw string
}

var (
	// "# Problem 1", "## Problem 1" or bare "Problem 1" (recognizer output is
	// not always faithful to the prompt, so the bare form is accepted too)
	problemPattern = regexp.MustCompile(`(?i)^(?:#{1,2}\s*)?problem\s+(\d+)\b[.:)]?\s*(.*)$`)

	// Hash-prefixed markers as instructed in the transcription prompt
	hashPartPattern    = regexp.MustCompile(`(?i)^##\s*([a-z])\)\s*(.*)$`)
	hashSubPartPattern = regexp.MustCompile(`(?i)^###\s*([ivxlcdm]+)\)\s*(.*)$`)

	// Bare markers with the hash prefix dropped by the recognizer
	barePartPattern    = regexp.MustCompile(`^([a-z])\)\s*(.*)$`)
	bareSubPartPattern = regexp.MustCompile(`^([ivxlcdm]+)\)\s*(.*)$`)

)

// Segment splits raw recognized text into an ordered sequence of classified
// lines. It is a pure function: the same input always yields the same
// sequence, and the result is fully materialized.
func Segment(raw string, f document.Format) []Line {
	rawLines := strings.Split(raw, "\n")
	lines := make([]Line, 0, len(rawLines))
	for _, rl := range rawLines {
		lines = append(lines, classify(rl, f))
	}
	return lines
}

// classify implements the decision table for a single line. The order of
// checks is significant: quoted lines are checked before markers so a quoted
// "a)" stays inside its proof, and roman markers are checked before letter
// markers so "ii)" is never read as a malformed part label.
func classify(raw string, f document.Format) Line {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return Line{Kind: LineBlank, Raw: raw}
	}

	if strings.HasPrefix(trimmed, f.ProofQuoteMarker) {
		content := strings.TrimSpace(strings.TrimPrefix(trimmed, f.ProofQuoteMarker))
		return Line{Kind: LineBlockquote, Text: content, Raw: raw}
	}

	if m := problemPattern.FindStringSubmatch(trimmed); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Line{Kind: LineProblemHeading, Number: n, Text: strings.TrimSpace(m[2]), Raw: raw}
	}

	if m := hashSubPartPattern.FindStringSubmatch(trimmed); m != nil {
		label := strings.ToLower(m[1])
		if document.IsRoman(label) {
			return Line{Kind: LineSubPartMarker, Label: label, Text: strings.TrimSpace(m[2]), Raw: raw}
		}
	}

	if m := hashPartPattern.FindStringSubmatch(trimmed); m != nil {
		return Line{Kind: LinePartMarker, Label: strings.ToLower(m[1]), Text: strings.TrimSpace(m[2]), Raw: raw}
	}

	if m := bareSubPartPattern.FindStringSubmatch(trimmed); m != nil {
		// Roman numerals win over letters for the overlap set (i, v, x, ...):
		// sub-part sequences reach those labels far sooner than part
		// sequences do.
		if document.IsRoman(m[1]) {
			return Line{Kind: LineSubPartMarker, Label: m[1], Text: strings.TrimSpace(m[2]), Raw: raw}
		}
	}

	if m := barePartPattern.FindStringSubmatch(trimmed); m != nil {
		return Line{Kind: LinePartMarker, Label: m[1], Text: strings.TrimSpace(m[2]), Raw: raw}
	}

	if isDisplayFence(trimmed, f.DisplayDelim) {
		inner := strings.TrimSpace(trimmed[len(f.DisplayDelim) : len(trimmed)-len(f.DisplayDelim)])
		return Line{Kind: LineDisplayMath, Text: inner, Raw: raw}
	}

	return Line{Kind: LineText, Text: trimmed, Raw: raw}
}

// isDisplayFence reports whether a trimmed line is a complete single-line
// display math block. A lone fence without content is left as text; the
// normalizer deals with stray delimiters.
func isDisplayFence(trimmed, delim string) bool {
	if len(trimmed) <= 2*len(delim) {
		return false
	}
	return strings.HasPrefix(trimmed, delim) && strings.HasSuffix(trimmed, delim)
}
