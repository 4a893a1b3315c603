package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

var (
	embedProvider string
	embedModel    string
)

var embedCmd = &cobra.Command{
	Use:   "embed [doc-name]",
	Short: "Embed a chunked document",
	Long: `Computes embeddings for every chunk of a chunked document.

The model defaults to the provider's first catalog entry. Run
"ragaudit embed --list" to see the provider/model catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmbed,
}

var embedList bool

func init() {
	embedCmd.Flags().StringVarP(&embedProvider, "provider", "p", "openai", "embedding provider")
	embedCmd.Flags().StringVarP(&embedModel, "model", "m", "", "embedding model (default: provider's first catalog entry)")
	embedCmd.Flags().BoolVar(&embedList, "list", false, "list the provider/model catalog and exit")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	if embedList {
		for provider, models := range domain.EmbeddingCatalog() {
			cmd.Printf("%s:\n", provider)
			for i, m := range models {
				marker := " "
				if i == 0 {
					marker = "*"
				}
				cmd.Printf("  %s %s\n", marker, m)
			}
		}
		return nil
	}

	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: document name required", domain.ErrInvalidInput)
	}

	model := embedModel
	if model == "" {
		model = domain.DefaultEmbeddingModel(embedProvider)
	}

	result, err := pipelineService.Embed(context.Background(), driven.EmbedRequest{
		DocumentID: args[0],
		Provider:   embedProvider,
		Model:      model,
	})
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}

	cmd.Printf("Embedded %d chunks\n", len(result.Embeddings))
	if len(result.Embeddings) > 0 {
		e := result.Embeddings[0]
		cmd.Printf("  Provider:  %s\n", e.EmbeddingProvider)
		cmd.Printf("  Model:     %s\n", e.EmbeddingModel)
		cmd.Printf("  Dimension: %d\n", e.VectorDimension)
	}
	if result.Filepath != "" {
		cmd.Printf("  Saved to:  %s\n", result.Filepath)
	}
	return nil
}
