package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Browse saved search results",
	Long: `Lists result sets saved server-side (search --save). A saved set
can feed generation via "ragaudit generate --from-saved".`,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved search results",
	Args:  cobra.NoArgs,
	RunE:  runSavedList,
}

var savedShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved result set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedShow,
}

var savedStoreCollection string

var savedStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Persist the current search results server-side",
	Long: `Saves the result set of the last successful search in this session,
so it survives the session and can feed generation later.`,
	Args: cobra.NoArgs,
	RunE: runSavedStore,
}

func init() {
	savedStoreCmd.Flags().StringVarP(&savedStoreCollection, "collection", "c", "", "collection the results came from")

	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedShowCmd)
	savedCmd.AddCommand(savedStoreCmd)
	rootCmd.AddCommand(savedCmd)
}

func runSavedList(cmd *cobra.Command, _ []string) error {
	if backendClient == nil {
		return errors.New("backend client not configured")
	}

	files, err := backendClient.ListSearchResults(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list saved searches: %w", err)
	}
	if len(files) == 0 {
		cmd.Println("No saved searches.")
		return nil
	}

	for _, f := range files {
		cmd.Printf("  %s  %s\n", f.ID, f.Name)
	}
	return nil
}

func runSavedStore(cmd *cobra.Command, _ []string) error {
	if backendClient == nil {
		return errors.New("backend client not configured")
	}
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	input := pipelineService.Handoff()
	if input == nil {
		return fmt.Errorf("%w: no search results to save; run a search first", domain.ErrValidationDeclined)
	}

	path, err := backendClient.SaveSearch(context.Background(), driven.SaveSearchRequest{
		Query:        input.Query,
		CollectionID: savedStoreCollection,
		Results:      input.Results,
	})
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}

	cmd.Printf("Saved to: %s\n", path)
	return nil
}

func runSavedShow(cmd *cobra.Command, args []string) error {
	if backendClient == nil {
		return errors.New("backend client not configured")
	}

	saved, err := backendClient.GetSearchResults(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load saved search %q: %w", args[0], err)
	}

	cmd.Printf("Query: %s\n", saved.Query)
	if saved.CollectionID != "" {
		cmd.Printf("Collection: %s\n", saved.CollectionID)
	}
	cmd.Println()
	return outputSearchTable(cmd, saved.Results)
}
