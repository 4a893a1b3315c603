package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pipeline stage states",
	Long: `Prints the invocation slot of every pipeline stage in order:
idle, in_flight, success, or failed with the recorded error.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	for _, state := range pipelineService.States() {
		cmd.Printf("  %-10s %s", state.Stage, state.Status)
		if state.Err != "" {
			cmd.Printf("  (%s)", state.Err)
		}
		cmd.Println()
	}
	return nil
}
