// Package pipeline wires the conversion stages together: tokenize, build,
// normalize, validate, render. One call converts one recognized page. The
// pipeline is synchronous, performs no I/O, and owns no shared state; callers
// may run any number of pages in parallel with one pipeline value each.
package pipeline

import (
	"strings"
	"unicode/utf8"

	"homework-transcriber/internal/builder"
	"homework-transcriber/internal/document"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/normalizer"
	"homework-transcriber/internal/renderer"
	"homework-transcriber/internal/tokenizer"
	"homework-transcriber/internal/types"
	"homework-transcriber/internal/validator"
)

// Convert runs the full pipeline over one page of raw recognized text and
// returns the formatted output plus the merged correction log.
//
// Only fatal input errors are returned as errors: empty input or input that
// is not valid text. Every structural and delimiter anomaly is repaired and
// reported through the correction log instead.
func Convert(raw string, f document.Format) (string, []document.Correction, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil, types.NewAppError(types.ErrInvalidInput, "input is empty", nil)
	}
	if !utf8.ValidString(raw) {
		return "", nil, types.NewAppError(types.ErrInvalidInput, "input is not valid UTF-8 text", nil)
	}

	doc, corrections, err := Parse(raw, f)
	if err != nil {
		return "", nil, err
	}

	out := renderer.Render(doc, f)

	logger.Info("page converted",
		logger.Int("inputBytes", len(raw)),
		logger.Int("outputBytes", len(out)),
		logger.Int("corrections", len(corrections)))
	return out, corrections, nil
}

// Parse runs every stage except rendering and returns the validated
// document. The LaTeX generator consumes documents, not rendered text, so
// this entry point is shared.
func Parse(raw string, f document.Format) (*document.Document, []document.Correction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, types.NewAppError(types.ErrInvalidInput, "input is empty", nil)
	}
	if !utf8.ValidString(raw) {
		return nil, nil, types.NewAppError(types.ErrInvalidInput, "input is not valid UTF-8 text", nil)
	}

	lines := tokenizer.Segment(raw, f)

	doc, buildCorr := builder.Build(lines, f)
	doc, normCorr := normalizer.Normalize(doc, f)
	doc, validCorr := validator.Validate(doc, f)

	corrections := make([]document.Correction, 0, len(buildCorr)+len(normCorr)+len(validCorr))
	corrections = append(corrections, buildCorr...)
	corrections = append(corrections, normCorr...)
	corrections = append(corrections, validCorr...)

	return doc, corrections, nil
}
