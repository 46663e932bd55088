// Package recognizer turns page images of handwritten homework into raw
// markdown transcripts. Two engines are available: a vision-language model
// accessed over an OpenAI-compatible API, and a local Tesseract fallback for
// offline use.
package recognizer

import (
	"context"
	"fmt"

	"homework-transcriber/internal/types"
)

// Engine recognizes one page image into transcript text.
type Engine interface {
	// Name identifies the engine in logs and results.
	Name() string
	// RecognizePage transcribes one JPEG-encoded page image.
	RecognizePage(ctx context.Context, image []byte, page int) (string, error)
}

// NewEngine builds the engine named by the config.
func NewEngine(cfg *types.Config) (Engine, error) {
	switch cfg.Engine {
	case "", "vision":
		return NewVisionEngine(cfg)
	case "tesseract":
		return NewTesseractEngine(), nil
	default:
		return nil, types.NewAppError(types.ErrConfig,
			fmt.Sprintf("unknown recognition engine %q", cfg.Engine), nil)
	}
}
