package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configCmd groups the subcommands for viewing and editing stored settings.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit the stored configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := manager.GetConfig()
		fmt.Fprintf(os.Stdout, "Config file: %s\n", manager.GetConfigPath())
		fmt.Fprintf(os.Stdout, "Base URL:    %s\n", manager.GetBaseURL())
		fmt.Fprintf(os.Stdout, "Model:       %s\n", cfg.Model)
		fmt.Fprintf(os.Stdout, "Engine:      %s\n", cfg.Engine)
		fmt.Fprintf(os.Stdout, "Compiler:    %s\n", cfg.Compiler)
		fmt.Fprintf(os.Stdout, "DPI:         %d\n", cfg.DPI)
		fmt.Fprintf(os.Stdout, "Max retries: %d\n", cfg.MaxRetries)
		if manager.GetAPIKey() != "" {
			fmt.Fprintln(os.Stdout, "API key:     set")
		} else {
			fmt.Fprintln(os.Stdout, "API key:     not set")
		}
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "Store the vision API key in the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadConfig()
		if err != nil {
			return err
		}
		if err := manager.SetAPIKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ API key saved to %s\n", manager.GetConfigPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
}
