package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"homework-transcriber/internal/compiler"
	"homework-transcriber/internal/config"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/pages"
	"homework-transcriber/internal/pipeline"
	"homework-transcriber/internal/preview"
	"homework-transcriber/internal/recognizer"
	"homework-transcriber/internal/renderer"
	"homework-transcriber/internal/results"
	"homework-transcriber/internal/texgen"
	"homework-transcriber/internal/types"

	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagEngine    string
	flagCompiler  string
	flagDPI       int
	flagRunName   string
	flagNoCompile bool
	flagNoPreview bool
	flagOutputDir string
	flagTitle     string
	flagStudent   string
)

// convertCmd orchestrates the full pipeline, from PDF inspection through page
// recognition and normalization to LaTeX compilation. Artifacts land in a
// per-run results directory.
var convertCmd = &cobra.Command{
	Use:   "convert <homework.pdf>",
	Short: "Transcribe a scanned homework PDF and typeset it",
	Long: `Convert renders each page of a scanned PDF to an image, transcribes the
handwriting, repairs the math notation, and writes markdown, LaTeX, an HTML
preview, and (when a LaTeX engine is installed) a typeset PDF.

Examples:
  hwtrans convert homework.pdf
  hwtrans convert homework.pdf --engine tesseract --no-compile
  hwtrans convert homework.pdf --name week3 --title "Homework 3" --student "A. Student"`,
	Args: cobra.ExactArgs(1),
	RunE: runConvertCmd,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&flagEngine, "engine", "", "Recognition engine: vision or tesseract (default from config)")
	convertCmd.Flags().StringVar(&flagCompiler, "compiler", "", "LaTeX engine: tectonic or pdflatex (default from config)")
	convertCmd.Flags().IntVar(&flagDPI, "dpi", 0, "Page rendering resolution (default from config)")
	convertCmd.Flags().StringVar(&flagRunName, "name", "", "Run name (default: input file name)")
	convertCmd.Flags().BoolVar(&flagNoCompile, "no-compile", false, "Skip LaTeX compilation")
	convertCmd.Flags().BoolVar(&flagNoPreview, "no-preview", false, "Skip the HTML preview")
	convertCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Results base directory (default: ~/homework-transcriber-results)")
	convertCmd.Flags().StringVar(&flagTitle, "title", "", "Document title for the typeset PDF")
	convertCmd.Flags().StringVar(&flagStudent, "student", "", "Student name for the typeset PDF")
}

func runConvertCmd(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]

	manager, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := manager.GetConfig()
	applyConvertFlags(cfg, manager)

	info, err := pages.Inspect(pdfPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s: %d page(s), %.1f KB\n", info.FileName, info.PageCount, float64(info.FileSize)/1024)
	if info.HasTextLayer {
		fmt.Fprintln(os.Stdout, "Note: the PDF already has a text layer; recognition runs on page images regardless.")
	}

	if !pages.PopplerAvailable() {
		return types.NewAppError(types.ErrConfig, "pdftoppm not found; install poppler-utils to render PDF pages", nil)
	}

	engine, err := recognizer.NewEngine(cfg)
	if err != nil {
		return err
	}

	resultsMgr, err := results.NewManager(flagOutputDir)
	if err != nil {
		return err
	}
	runName := flagRunName
	if runName == "" {
		runName = results.RunNameFor(pdfPath)
	}
	runInfo := &results.RunInfo{
		Name:       runName,
		SourceFile: pdfPath,
		Engine:     engine.Name(),
		Pages:      info.PageCount,
		Status:     results.StatusRecognizing,
		CreatedAt:  time.Now(),
	}
	if err := resultsMgr.SaveRunInfo(runInfo); err != nil {
		return err
	}

	ctx := context.Background()
	transcript, err := recognizePages(ctx, engine, cfg, pdfPath, info.PageCount)
	if err != nil {
		resultsMgr.UpdateStatus(runName, results.StatusError, err.Error())
		return err
	}
	if err := resultsMgr.SaveArtifact(resultsMgr.TranscriptPath(runName), transcript); err != nil {
		return err
	}

	doc, corrections, err := pipeline.Parse(transcript, cfg.Format)
	if err != nil {
		resultsMgr.UpdateStatus(runName, results.StatusError, err.Error())
		return err
	}
	markdown := renderer.Render(doc, cfg.Format)
	if err := resultsMgr.SaveArtifact(resultsMgr.FormattedPath(runName), markdown); err != nil {
		return err
	}
	if err := resultsMgr.SaveCorrections(runName, corrections); err != nil {
		return err
	}
	runInfo.Corrections = len(corrections)
	runInfo.Status = results.StatusFormatted
	if err := resultsMgr.SaveRunInfo(runInfo); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Markdown: %s (%d corrections)\n", resultsMgr.FormattedPath(runName), len(corrections))

	gen, err := texgen.NewGenerator()
	if err != nil {
		return err
	}
	texSource, err := gen.Generate(doc, cfg)
	if err != nil {
		return err
	}
	if err := resultsMgr.SaveArtifact(resultsMgr.TexPath(runName), texSource); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ LaTeX: %s\n", resultsMgr.TexPath(runName))

	if !flagNoPreview {
		html, err := preview.Render(markdown, cfg.DocumentTitle)
		if err != nil {
			return err
		}
		if err := resultsMgr.SaveArtifact(resultsMgr.PreviewPath(runName), html); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Preview: %s\n", resultsMgr.PreviewPath(runName))
	}

	if flagNoCompile {
		return nil
	}
	comp := compiler.New(cfg.Compiler, compiler.DefaultTimeout)
	compileResult, err := comp.Compile(ctx, resultsMgr.TexPath(runName), resultsMgr.RunDir(runName))
	if err != nil {
		resultsMgr.UpdateStatus(runName, results.StatusError, err.Error())
		return err
	}
	if !compileResult.Success {
		resultsMgr.UpdateStatus(runName, results.StatusError, compileResult.ErrorMsg)
		fmt.Fprintf(os.Stderr, "✗ Compilation failed: %s\n", compileResult.ErrorMsg)
		fmt.Fprintf(os.Stderr, "  LaTeX source kept at %s\n", resultsMgr.TexPath(runName))
		return nil
	}
	resultsMgr.UpdateStatus(runName, results.StatusCompiled, "")
	fmt.Fprintf(os.Stdout, "✓ PDF: %s\n", compileResult.PDFPath)
	return nil
}

// applyConvertFlags lets command-line flags override the loaded config.
func applyConvertFlags(cfg *types.Config, manager *config.Manager) {
	if flagEngine != "" {
		cfg.Engine = flagEngine
	}
	if flagCompiler != "" {
		cfg.Compiler = flagCompiler
	}
	if flagDPI > 0 {
		cfg.DPI = flagDPI
	}
	if flagTitle != "" {
		cfg.DocumentTitle = flagTitle
	}
	if flagStudent != "" {
		cfg.StudentName = flagStudent
	}
	if cfg.APIKey == "" {
		cfg.APIKey = manager.GetAPIKey()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = manager.GetBaseURL()
	}
}

// recognizePages renders and transcribes every page, joining the per-page
// transcripts with blank lines.
func recognizePages(ctx context.Context, engine recognizer.Engine, cfg *types.Config, pdfPath string, pageCount int) (string, error) {
	pageRenderer := pages.NewRenderer(cfg.DPI)
	defer pageRenderer.Cleanup()

	transcripts := make([]string, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		fmt.Fprintf(os.Stdout, "[%d/%d] Recognizing page...\n", pageNum, pageCount)

		image, err := pageRenderer.PreparePage(pdfPath, pageNum)
		if err != nil {
			return "", err
		}
		start := time.Now()
		text, err := engine.RecognizePage(ctx, image, pageNum)
		if err != nil {
			return "", err
		}
		logger.Debug("page transcribed",
			logger.Int("page", pageNum),
			logger.Int("chars", len(text)),
			logger.Duration("elapsed", time.Since(start)))
		transcripts = append(transcripts, strings.TrimSpace(text))
	}
	return strings.Join(transcripts, "\n\n"), nil
}
