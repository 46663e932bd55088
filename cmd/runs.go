package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"homework-transcriber/internal/results"

	"github.com/spf13/cobra"
)

// runsCmd groups the subcommands for browsing past conversion runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage past conversion runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past conversion runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := results.NewManager(flagOutputDir)
		if err != nil {
			return err
		}
		runs, err := manager.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stdout, "No runs found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tPAGES\tCORRECTIONS\tCREATED")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				run.Name, run.Status, run.Pages, run.Corrections,
				run.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the details of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := results.NewManager(flagOutputDir)
		if err != nil {
			return err
		}
		run, err := manager.LoadRunInfo(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Name:        %s\n", run.Name)
		fmt.Fprintf(os.Stdout, "Source:      %s\n", run.SourceFile)
		fmt.Fprintf(os.Stdout, "Engine:      %s\n", run.Engine)
		fmt.Fprintf(os.Stdout, "Pages:       %d\n", run.Pages)
		fmt.Fprintf(os.Stdout, "Corrections: %d\n", run.Corrections)
		fmt.Fprintf(os.Stdout, "Status:      %s\n", run.Status)
		if run.ErrorMessage != "" {
			fmt.Fprintf(os.Stdout, "Error:       %s\n", run.ErrorMessage)
		}
		fmt.Fprintf(os.Stdout, "Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(os.Stdout, "Directory:   %s\n", manager.RunDir(run.Name))
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a run and all its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := results.NewManager(flagOutputDir)
		if err != nil {
			return err
		}
		if !manager.RunExists(args[0]) {
			return fmt.Errorf("run %q not found", args[0])
		}
		if err := manager.DeleteRun(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "Results base directory (default: ~/homework-transcriber-results)")
}
