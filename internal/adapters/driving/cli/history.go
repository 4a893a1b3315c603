package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived evaluation runs",
	Long:  `Lists evaluation reports archived locally and reloads past runs.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowJSON bool

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show an archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyShowCmd.Flags().BoolVar(&historyShowJSON, "json", false, "output the report as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	entries, err := historyService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("No archived runs.")
		return nil
	}

	for _, e := range entries {
		cmd.Printf("  %s  %s  %-20s  %3d queries  hit %.3f  find %.3f\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.RunID, e.CollectionID,
			e.TotalQueries, e.AvgScoreHit, e.AvgScoreFind)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	report, err := historyService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load run %q: %w", args[0], err)
	}

	if historyShowJSON {
		return outputReportJSON(cmd, report)
	}
	return outputReportTable(cmd, report)
}
