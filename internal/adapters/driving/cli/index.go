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
	indexVectorDB string
	indexMode     string
)

var indexCmd = &cobra.Command{
	Use:   "index [embedding-file]",
	Short: "Index an embedding file into a vector store",
	Long: `Writes an embedding file into a vector store collection.

The index mode defaults to the store's first catalog entry
(e.g. flat for milvus). Run "ragaudit index --list" for the
vector DB / index mode catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var indexListModes bool

func init() {
	indexCmd.Flags().StringVarP(&indexVectorDB, "db", "d", "milvus", "vector database")
	indexCmd.Flags().StringVarP(&indexMode, "mode", "m", "", "index mode (default: database's first catalog entry)")
	indexCmd.Flags().BoolVar(&indexListModes, "list", false, "list the vector DB catalog and exit")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexListModes {
		for db, modes := range domain.VectorDBCatalog() {
			cmd.Printf("%s:\n", db)
			for i, m := range modes {
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
		return fmt.Errorf("%w: embedding file name required", domain.ErrInvalidInput)
	}

	mode := indexMode
	if mode == "" {
		mode = domain.DefaultIndexMode(indexVectorDB)
	}

	result, err := pipelineService.Index(context.Background(), driven.IndexRequest{
		FileID:    args[0],
		VectorDB:  indexVectorDB,
		IndexMode: mode,
	})
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed into %s/%s\n", result.Database, result.CollectionName)
	cmd.Printf("  Mode:    %s\n", result.IndexMode)
	cmd.Printf("  Vectors: %d\n", result.TotalVectors)
	if result.ProcessingTime > 0 {
		cmd.Printf("  Took:    %.2fs\n", result.ProcessingTime)
	}
	return nil
}
