// Package compiler runs the LaTeX toolchain over generated homework sources.
// It prefers tectonic, a self-contained engine that fetches packages on
// demand, and falls back to pdflatex when tectonic is not installed.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

const (
	// CompilerTectonic is the preferred, self-contained engine
	CompilerTectonic = "tectonic"
	// CompilerPDFLaTeX is the fallback engine
	CompilerPDFLaTeX = "pdflatex"
	// DefaultTimeout bounds a single compiler run
	DefaultTimeout = 3 * time.Minute
)

// Compiler executes a LaTeX engine over .tex sources.
type Compiler struct {
	compiler string
	timeout  time.Duration
}

// New creates a Compiler for the named engine. An empty name selects tectonic.
func New(compiler string, timeout time.Duration) *Compiler {
	if compiler == "" {
		compiler = CompilerTectonic
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Compiler{compiler: compiler, timeout: timeout}
}

// Compile builds texPath into a PDF in outputDir. When the configured engine
// is not installed the fallback engine is tried before giving up. The
// returned CompileResult carries the full engine log either way.
func (c *Compiler) Compile(ctx context.Context, texPath, outputDir string) (*types.CompileResult, error) {
	if _, err := os.Stat(texPath); err != nil {
		return nil, types.NewAppError(types.ErrFileNotFound, "tex file not found", err)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(texPath)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, types.NewAppError(types.ErrCompile, "failed to create output directory", err)
	}

	engines := []string{c.compiler}
	if c.compiler == CompilerTectonic {
		engines = append(engines, CompilerPDFLaTeX)
	}

	var lastErr error
	for _, engine := range engines {
		if _, err := exec.LookPath(engine); err != nil {
			logger.Warn("LaTeX engine not found, trying fallback", logger.String("engine", engine))
			lastErr = types.NewAppError(types.ErrCompile,
				fmt.Sprintf("%s not found in PATH", engine), err)
			continue
		}
		result, err := c.run(ctx, engine, texPath, outputDir)
		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}
	return nil, lastErr
}

// run executes one engine and interprets its outcome.
func (c *Compiler) run(ctx context.Context, engine, texPath, outputDir string) (*types.CompileResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := buildArgs(engine, texPath, outputDir)
	logger.Info("compiling LaTeX source",
		logger.String("engine", engine),
		logger.String("tex", texPath),
		logger.String("outputDir", outputDir))

	cmd := exec.CommandContext(runCtx, engine, args...)
	cmd.Dir = filepath.Dir(texPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	log := combineOutput(stdout.String(), stderr.String())

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, types.NewAppError(types.ErrCompile, "compilation timed out", runCtx.Err())
	}

	base := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath))
	pdfPath := filepath.Join(outputDir, base+".pdf")

	if err != nil {
		errMsg := firstLatexError(log)
		logger.Error("compilation failed", err,
			logger.String("engine", engine),
			logger.String("latexError", errMsg))
		return &types.CompileResult{
			Success:  false,
			Log:      log,
			ErrorMsg: errMsg,
		}, types.NewAppErrorWithDetails(types.ErrCompile, "LaTeX compilation failed", errMsg, err)
	}

	if _, statErr := os.Stat(pdfPath); statErr != nil {
		return &types.CompileResult{
			Success:  false,
			Log:      log,
			ErrorMsg: "engine exited cleanly but produced no PDF",
		}, types.NewAppError(types.ErrCompile, "engine produced no PDF", statErr)
	}

	logger.Info("compilation succeeded",
		logger.String("pdf", pdfPath),
		logger.Duration("elapsed", elapsed))
	return &types.CompileResult{Success: true, PDFPath: pdfPath, Log: log}, nil
}

// buildArgs assembles the command line for one engine.
func buildArgs(engine, texPath, outputDir string) []string {
	switch engine {
	case CompilerTectonic:
		return []string{"-o", outputDir, texPath}
	default:
		return []string{
			"-interaction=nonstopmode",
			fmt.Sprintf("-output-directory=%s", outputDir),
			texPath,
		}
	}
}

// combineOutput merges stdout and stderr into one log string.
func combineOutput(stdout, stderr string) string {
	var parts []string
	if stdout != "" {
		parts = append(parts, stdout)
	}
	if stderr != "" {
		parts = append(parts, stderr)
	}
	return strings.Join(parts, "\n")
}

// firstLatexError pulls the first "! ..." error line out of a LaTeX log so
// callers get a usable message without the whole transcript.
func firstLatexError(log string) string {
	for _, line := range strings.Split(log, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "! ") {
			return strings.TrimPrefix(trimmed, "! ")
		}
		if strings.HasPrefix(trimmed, "error: ") {
			return strings.TrimPrefix(trimmed, "error: ")
		}
	}
	return "see compilation log"
}
