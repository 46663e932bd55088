package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"homework-transcriber/internal/encoding"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/pipeline"
	"homework-transcriber/internal/preview"

	"github.com/spf13/cobra"
)

var (
	flagFormatOutput    string
	flagFormatPreview   bool
	flagFormatTitle     string
	flagShowCorrections bool
)

// formatCmd runs the normalization pipeline over an already-transcribed text
// file. No recognition, no compilation.
var formatCmd = &cobra.Command{
	Use:   "format <transcript.txt>",
	Short: "Normalize a raw transcript into valid markdown",
	Long: `Format reads a raw transcript (any common text encoding), repairs the math
notation and document structure, and writes markdown that is guaranteed to
have balanced delimiters and contiguous problem numbering.

Examples:
  hwtrans format transcript.txt
  hwtrans format transcript.txt -o homework.md --corrections
  hwtrans format transcript.txt --preview`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringVarP(&flagFormatOutput, "output", "o", "", "Output file (default: <input>.md)")
	formatCmd.Flags().BoolVar(&flagFormatPreview, "preview", false, "Also write an HTML preview next to the output")
	formatCmd.Flags().StringVar(&flagFormatTitle, "title", "", "Title for the HTML preview")
	formatCmd.Flags().BoolVar(&flagShowCorrections, "corrections", false, "Print every applied correction")
}

func runFormat(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	manager, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := manager.GetConfig()

	raw, err := encoding.ReadFile(inputPath)
	if err != nil {
		return err
	}

	output, corrections, err := pipeline.Convert(raw, cfg.Format)
	if err != nil {
		return err
	}

	outputPath := flagFormatOutput
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".md"
	}
	if err := os.WriteFile(outputPath, []byte(output), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	logger.Info("formatted transcript",
		logger.String("input", inputPath),
		logger.String("output", outputPath),
		logger.Int("corrections", len(corrections)))

	fmt.Fprintf(os.Stdout, "✓ Written: %s (%d corrections)\n", outputPath, len(corrections))
	if flagShowCorrections {
		for _, c := range corrections {
			fmt.Fprintf(os.Stdout, "  %s [%s] %s\n", c.Location, c.Kind, c.Action)
		}
	}

	if flagFormatPreview {
		title := flagFormatTitle
		if title == "" {
			title = cfg.DocumentTitle
		}
		html, err := preview.Render(output, title)
		if err != nil {
			return err
		}
		previewPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".html"
		if err := os.WriteFile(previewPath, []byte(html), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", previewPath, err)
		}
		fmt.Fprintf(os.Stdout, "✓ Preview: %s\n", previewPath)
	}
	return nil
}
