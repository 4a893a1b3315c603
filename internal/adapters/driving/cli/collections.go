package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage vector store collections",
	Long:  `List, inspect, or delete collections across vector store providers.`,
}

var collectionsProvider string

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections for a provider",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show collection statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsShow,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsDelete,
}

var collectionsProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available vector store providers",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsProviders,
}

func init() {
	collectionsCmd.PersistentFlags().StringVarP(&collectionsProvider, "provider", "p", "milvus", "vector store provider")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsShowCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	collectionsCmd.AddCommand(collectionsProvidersCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsProviders(cmd *cobra.Command, _ []string) error {
	if backendClient == nil {
		return errors.New("backend client not configured")
	}

	providers, err := backendClient.ListProviders(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list providers: %w", err)
	}
	if len(providers) == 0 {
		cmd.Println("No providers available.")
		return nil
	}

	for _, p := range providers {
		cmd.Printf("  %-10s %s\n", p.ID, p.Name)
	}
	return nil
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	if backendClient == nil {
		return errors.New("backend client not configured")
	}

	collections, err := backendClient.ListCollections(context.Background(), collectionsProvider)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(collections) == 0 {
		cmd.Printf("No collections in %s.\n", collectionsProvider)
		return nil
	}

	for _, c := range collections {
		cmd.Printf("  %-40s %d vectors\n", c.Name, c.Count)
	}
	cmd.Printf("\nTotal: %d collections\n", len(collections))
	return nil
}

func runCollectionsShow(cmd *cobra.Command, args []string) error {
	if backendClient == nil {
		return errors.New("backend client not configured")
	}

	stats, err := backendClient.GetCollection(context.Background(), collectionsProvider, args[0])
	if err != nil {
		return fmt.Errorf("failed to get collection %q: %w", args[0], err)
	}

	cmd.Printf("%s/%s\n", stats.Database, stats.CollectionName)
	cmd.Printf("  Mode:    %s\n", stats.IndexMode)
	cmd.Printf("  Vectors: %d\n", stats.TotalVectors)
	if stats.IndexSize > 0 {
		cmd.Printf("  Size:    %d\n", stats.IndexSize)
	}
	return nil
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	if backendClient == nil {
		return errors.New("backend client not configured")
	}

	if err := backendClient.DeleteCollection(context.Background(), collectionsProvider, args[0]); err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", args[0], err)
	}

	cmd.Printf("Deleted collection: %s/%s\n", collectionsProvider, args[0])
	return nil
}
