// Package pages turns an input PDF into recognizer-ready page images. It
// validates the PDF, probes for an existing text layer, renders pages through
// poppler's pdftoppm, and preprocesses the bitmaps for recognition.
package pages

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

// Info describes an input PDF.
type Info struct {
	FilePath  string
	FileName  string
	PageCount int
	FileSize  int64
	// HasTextLayer reports whether the PDF already carries extractable text.
	// Scanned homework does not; such a layer usually means the wrong file.
	HasTextLayer bool
}

// Inspect validates the PDF and collects its metadata.
func Inspect(pdfPath string) (*Info, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrFileNotFound, "PDF file not found", err)
		}
		return nil, types.NewAppError(types.ErrInvalidInput, "cannot access PDF file", err)
	}
	if fileInfo.IsDir() {
		return nil, types.NewAppError(types.ErrInvalidInput, "path is a directory, not a PDF", nil)
	}

	if err := api.ValidateFile(pdfPath, nil); err != nil {
		return nil, types.NewAppError(types.ErrInvalidInput, "file is not a valid PDF", err)
	}

	pageCount, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrInvalidInput, "failed to count PDF pages", err)
	}

	hasText, err := hasTextLayer(pdfPath, pageCount)
	if err != nil {
		// A probe failure is not fatal; assume a scan.
		logger.Warn("text layer probe failed, assuming scanned pages", logger.Err(err))
		hasText = false
	}

	logger.Info("PDF inspected",
		logger.String("file", filepath.Base(pdfPath)),
		logger.Int("pages", pageCount),
		logger.Bool("hasTextLayer", hasText))

	return &Info{
		FilePath:     pdfPath,
		FileName:     filepath.Base(pdfPath),
		PageCount:    pageCount,
		FileSize:     fileInfo.Size(),
		HasTextLayer: hasText,
	}, nil
}

// hasTextLayer tries extracting text from the first few pages.
func hasTextLayer(pdfPath string, pageCount int) (bool, error) {
	f, r, err := ledongthuc.Open(pdfPath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	maxPagesToCheck := 3
	if pageCount < maxPagesToCheck {
		maxPagesToCheck = pageCount
	}

	totalTextLength := 0
	for pageNum := 1; pageNum <= maxPagesToCheck; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, c := range content {
			if c != ' ' && c != '\n' && c != '\t' && c != '\r' {
				totalTextLength++
			}
		}
	}

	// A handful of characters can come from stamps or page numbers; require
	// enough text to call it a real layer.
	return totalTextLength > 50, nil
}

// Renderer converts PDF pages to bitmaps via poppler's pdftoppm.
type Renderer struct {
	dpi     int
	tempDir string
}

// NewRenderer creates a Renderer at the given resolution.
func NewRenderer(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = 300
	}
	return &Renderer{dpi: dpi}
}

// PopplerAvailable reports whether pdftoppm is installed.
func PopplerAvailable() bool {
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}

// RenderPage renders one page (1-based) to a JPEG file and returns its path.
func (r *Renderer) RenderPage(pdfPath string, pageNum int) (string, error) {
	if r.tempDir == "" {
		tempDir, err := os.MkdirTemp("", "homework_pages_*")
		if err != nil {
			return "", types.NewAppError(types.ErrInternal, "failed to create temp dir", err)
		}
		r.tempDir = tempDir
	}

	outputPrefix := filepath.Join(r.tempDir, fmt.Sprintf("page_%d", pageNum))
	args := []string{
		"-f", fmt.Sprintf("%d", pageNum),
		"-l", fmt.Sprintf("%d", pageNum),
		"-jpeg",
		"-r", fmt.Sprintf("%d", r.dpi),
		"-gray",
		"-singlefile",
		pdfPath,
		outputPrefix,
	}

	logger.Debug("rendering PDF page",
		logger.String("pdf", filepath.Base(pdfPath)),
		logger.Int("page", pageNum),
		logger.Int("dpi", r.dpi))

	cmd := exec.Command("pdftoppm", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrInternal,
			"pdftoppm failed", string(output), err)
	}

	return outputPrefix + ".jpg", nil
}

// Cleanup removes rendered temp files.
func (r *Renderer) Cleanup() {
	if r.tempDir != "" {
		os.RemoveAll(r.tempDir)
		r.tempDir = ""
	}
}
