package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

var (
	searchCollection string
	searchTopK       int
	searchThreshold  float64
	searchMinWords   int
	searchSave       bool
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run similarity search against a collection",
	Long: `Runs similarity search against an indexed collection and prints the
hits above the score threshold. A successful search arms the
generation stage: "ragaudit generate" reuses the query and results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "", "collection ID to search (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "maximum number of hits")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0.7, "minimum similarity score")
	searchCmd.Flags().IntVar(&searchMinWords, "min-words", 30, "drop chunks below this word count")
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "persist the result set server-side")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	results, err := pipelineService.Search(context.Background(), driven.SearchRequest{
		Query:              args[0],
		CollectionID:       searchCollection,
		TopK:               searchTopK,
		Threshold:          searchThreshold,
		WordCountThreshold: searchMinWords,
		SaveResults:        searchSave,
	})
	if errors.Is(err, domain.ErrEmptyResult) {
		cmd.Println("No results above the threshold.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := results[i]
		cmd.Printf("  [%d] %s p.%d (%.3f)\n", i+1, r.Metadata.Source, r.Metadata.Page, r.Score)
		cmd.Printf("      %s\n", truncate(r.Text, 160))
	}
	cmd.Printf("\nTotal: %d hits\n", len(results))
	return nil
}
