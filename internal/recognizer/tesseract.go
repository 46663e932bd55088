package recognizer

import (
	"context"

	"github.com/otiai10/gosseract/v2"

	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

// TesseractEngine recognizes pages with a local Tesseract installation. It
// reads printed text well but loses most handwritten math, so it is the
// offline fallback, not the default.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// RecognizePage runs Tesseract over one JPEG page image.
func (e *TesseractEngine) RecognizePage(ctx context.Context, image []byte, page int) (string, error) {
	select {
	case <-ctx.Done():
		return "", types.NewAppError(types.ErrRecognition, "recognition cancelled", ctx.Err())
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", types.NewAppError(types.ErrRecognition, "failed to set page image", err)
	}

	text, err := c.Text()
	if err != nil {
		logger.Error("tesseract recognition failed", err, logger.Int("page", page))
		return "", types.NewAppError(types.ErrRecognition, "tesseract recognition failed", err)
	}

	logger.Debug("page recognized with tesseract",
		logger.Int("page", page),
		logger.Int("bytes", len(text)))
	return Clean(text), nil
}
