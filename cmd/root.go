// Package cmd implements the CLI commands for the homework transcriber
// using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"homework-transcriber/internal/config"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"

	"github.com/spf13/cobra"
)

// Persistent flag variables.
var (
	flagConfigPath string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "hwtrans",
	Short: "Convert handwritten math homework into clean LaTeX-flavored markdown",
	Long: `hwtrans transcribes scanned handwritten math homework into markdown with
guaranteed-valid LaTeX math, and optionally compiles it to a typeset PDF.

Usage:
  hwtrans convert <homework.pdf> [flags]
  hwtrans format <transcript.txt> [flags]
  hwtrans runs [list|show|delete]`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logConfig := logger.DefaultConfig()
		if flagVerbose {
			logConfig.Level = logger.LevelDebug
			logConfig.EnableConsole = true
		}
		return logger.Init(logConfig)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var appErr *types.AppError
		if errors.As(err, &appErr) && appErr.Code == types.ErrConfig {
			fmt.Fprintln(os.Stderr, "Run 'hwtrans config set-key <key>' or set MISTRAL_API_KEY.")
		}
		logger.Close()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config file (default: ~/.config/homework-transcriber/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging to console")
}

// loadConfig creates a config manager from the --config flag and loads it.
func loadConfig() (*config.Manager, error) {
	manager, err := config.NewManager(flagConfigPath)
	if err != nil {
		return nil, err
	}
	if err := manager.Load(); err != nil {
		return nil, err
	}
	return manager, nil
}
