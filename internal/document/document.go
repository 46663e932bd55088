// Package document defines the hierarchical homework document model and the
// correction log types shared by every pipeline stage.
package document

// Format holds the output formatting symbols used across the pipeline.
// It is passed explicitly to every stage; the core keeps no ambient state.
type Format struct {
	// InlineDelim delimits inline math spans (opening and closing)
	InlineDelim string `json:"inline_delim"`
	// DisplayDelim delimits display math fences
	DisplayDelim string `json:"display_delim"`
	// QEDSymbol terminates a completed proof block
	QEDSymbol string `json:"qed_symbol"`
	// ProofQuoteMarker prefixes each quoted proof line
	ProofQuoteMarker string `json:"proof_quote_marker"`
}

// DefaultFormat returns the standard homework formatting conventions.
func DefaultFormat() Format {
	return Format{
		InlineDelim:      "$",
		DisplayDelim:     "$$",
		QEDSymbol:        `\blacksquare`,
		ProofQuoteMarker: ">",
	}
}

// BlockKind discriminates the content block variants.
type BlockKind string

const (
	// KindParagraph is plain prose, possibly embedding inline math spans
	KindParagraph BlockKind = "paragraph"
	// KindProofBlock is one or more quoted lines ending with a QED marker
	KindProofBlock BlockKind = "proof"
	// KindDisplayMath is a single block-level math expression
	KindDisplayMath BlockKind = "display_math"
	// KindEquationLine is a free-standing computed expression
	KindEquationLine BlockKind = "equation"
)

// Block is the smallest unit of document content.
type Block struct {
	Kind BlockKind `json:"kind"`
	// Text carries the content for paragraph, display math, and equation blocks
	Text string `json:"text,omitempty"`
	// Lines carries the quoted lines of a proof block, quote marker stripped
	Lines []string `json:"lines,omitempty"`
	// Normalized is set once the delimiter normalizer has repaired this block;
	// normalized blocks are skipped on re-entry so normalization is idempotent
	Normalized bool `json:"-"`
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	c := b
	if b.Lines != nil {
		c.Lines = append([]string(nil), b.Lines...)
	}
	return c
}

// SubPart is a roman-numeral-labeled leaf container. No further nesting.
type SubPart struct {
	Label  string  `json:"label"`
	Blocks []Block `json:"blocks"`
}

// Part is a letter-labeled container holding sub-parts and/or content blocks.
type Part struct {
	Label    string     `json:"label"`
	Blocks   []Block    `json:"blocks,omitempty"`
	SubParts []*SubPart `json:"subparts,omitempty"`
}

// Problem is a numbered top-level container. A problem may hold content
// directly (a direct proof) and/or lettered parts.
type Problem struct {
	Number int     `json:"number"`
	Blocks []Block `json:"blocks,omitempty"`
	Parts  []*Part `json:"parts,omitempty"`
}

// Document is the ordered sequence of problems built from one recognized page.
type Document struct {
	Problems []*Problem `json:"problems"`
}

// Clone returns a deep copy of the document. Stages that rewrite blocks
// operate on a clone so no prior stage's output is mutated in place.
func (d *Document) Clone() *Document {
	out := &Document{}
	for _, p := range d.Problems {
		np := &Problem{Number: p.Number}
		for _, b := range p.Blocks {
			np.Blocks = append(np.Blocks, b.Clone())
		}
		for _, part := range p.Parts {
			npart := &Part{Label: part.Label}
			for _, b := range part.Blocks {
				npart.Blocks = append(npart.Blocks, b.Clone())
			}
			for _, sp := range part.SubParts {
				nsp := &SubPart{Label: sp.Label}
				for _, b := range sp.Blocks {
					nsp.Blocks = append(nsp.Blocks, b.Clone())
				}
				npart.SubParts = append(npart.SubParts, nsp)
			}
			np.Parts = append(np.Parts, npart)
		}
		out.Problems = append(out.Problems, np)
	}
	return out
}

// MathSpan is a substring classified as inline or display math.
type MathSpan struct {
	// Raw is the span content without delimiters
	Raw string
	// Display reports whether the span uses display delimiters
	Display bool
	// Balanced reports whether braces inside the span are balanced
	Balanced bool
	// Start and End are byte offsets of the full delimited span in the
	// enclosing block text, delimiters included
	Start, End int
}

// CorrectionKind identifies the class of a recorded correction.
type CorrectionKind string

const (
	// CorrectionClosedDelimiter: a missing math delimiter was inserted
	CorrectionClosedDelimiter CorrectionKind = "closed_delimiter"
	// CorrectionWrappedMath: a bare math expression was wrapped in delimiters
	CorrectionWrappedMath CorrectionKind = "wrapped_math"
	// CorrectionClosedBraces: missing closing braces were appended to a span
	CorrectionClosedBraces CorrectionKind = "closed_braces"
	// CorrectionCanonicalized: a known misrecognition was rewritten
	CorrectionCanonicalized CorrectionKind = "canonicalized"
	// CorrectionInsertedQED: a missing QED marker was appended to a proof
	CorrectionInsertedQED CorrectionKind = "inserted_qed"
	// CorrectionMovedQED: stray QED markers were collapsed to the proof end
	CorrectionMovedQED CorrectionKind = "moved_qed"
	// CorrectionRelabeled: a part or sub-part sequence was renumbered
	CorrectionRelabeled CorrectionKind = "relabeled"
	// CorrectionRenumbered: problem numbers were reassigned in encounter order
	CorrectionRenumbered CorrectionKind = "renumbered"
	// CorrectionPromotedSubPart: a depth-2 marker with no open part became a part
	CorrectionPromotedSubPart CorrectionKind = "promoted_subpart"
	// CorrectionCreatedProblem: a part marker with no open problem created one
	CorrectionCreatedProblem CorrectionKind = "created_problem"
	// CorrectionEscapedSpan: an irreparable math span was escaped verbatim
	CorrectionEscapedSpan CorrectionKind = "escaped_span"
	// CorrectionDroppedBlock: an empty content block was dropped
	CorrectionDroppedBlock CorrectionKind = "dropped_block"
)

// Correction records one recoverable anomaly and the action taken.
// The pipeline reports anomalies as data, never as thrown errors.
type Correction struct {
	Location string         `json:"location"`
	Kind     CorrectionKind `json:"kind"`
	Action   string         `json:"action"`
}
