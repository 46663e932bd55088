// Package types defines shared data types and the error taxonomy for the
// homework transcriber application.
package types

import "homework-transcriber/internal/document"

// Config holds the application configuration.
type Config struct {
	APIKey        string `json:"api_key"`
	BaseURL       string `json:"base_url"` // base URL of the OpenAI-compatible vision API
	Model         string `json:"model"`
	Engine        string `json:"engine"`   // "vision" or "tesseract"
	Compiler      string `json:"compiler"` // "tectonic" or "pdflatex"
	OutputDir     string `json:"output_dir"`
	DPI           int    `json:"dpi"`         // page-to-image rendering resolution
	MaxRetries    int    `json:"max_retries"` // recognition call retry limit
	StudentName   string `json:"student_name"`
	DocumentTitle string `json:"document_title"`

	Format document.Format `json:"format"`
}

// RecognitionResult holds the raw transcript for one page.
type RecognitionResult struct {
	Page       int    `json:"page"`
	Transcript string `json:"transcript"`
	Engine     string `json:"engine"`
}

// FormatResult holds the outcome of one page conversion run.
type FormatResult struct {
	Output      string                `json:"output"`
	Corrections []document.Correction `json:"corrections"`
}

// CompileResult holds the outcome of a LaTeX compilation.
type CompileResult struct {
	Success  bool   `json:"success"`
	PDFPath  string `json:"pdf_path"`
	Log      string `json:"log"`
	ErrorMsg string `json:"error_msg,omitempty"`
}

// ErrorCode identifies the error class.
type ErrorCode string

const (
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrRecognition  ErrorCode = "RECOGNITION_ERROR"
	ErrAPIRateLimit ErrorCode = "API_RATE_LIMIT"
	ErrCompile      ErrorCode = "COMPILE_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
