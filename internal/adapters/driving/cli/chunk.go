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
	chunkMethod  string
	chunkSize    int
	chunkPreview int
	chunkJSON    bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [doc-name]",
	Short: "Split a loaded document into chunks",
	Long: `Splits a previously loaded document using the selected method
(by_pages, fixed_size, by_paragraphs, by_sentences). The fixed_size
method additionally takes a --size in characters.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().StringVarP(&chunkMethod, "method", "m", domain.ChunkByPages, "chunking method")
	chunkCmd.Flags().IntVarP(&chunkSize, "size", "s", 0, "chunk size in characters (fixed_size only)")
	chunkCmd.Flags().IntVar(&chunkPreview, "preview", 3, "number of chunks to print")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	req := driven.ChunkRequest{
		DocID:          args[0],
		ChunkingOption: chunkMethod,
		ChunkSize:      chunkSize,
	}

	result, err := pipelineService.Chunk(context.Background(), req)
	if err != nil {
		return fmt.Errorf("chunk failed: %w", err)
	}

	if chunkJSON {
		return outputChunkResultJSON(cmd, result)
	}
	return outputChunkResultTable(cmd, result)
}

func outputChunkResultJSON(cmd *cobra.Command, result *domain.ChunkResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChunkResultTable(cmd *cobra.Command, result *domain.ChunkResult) error {
	cmd.Printf("%s\n", result.Filename)
	cmd.Printf("  Pages:    %d\n", result.TotalPages)
	cmd.Printf("  Chunks:   %d\n", result.TotalChunks)
	if result.LoadingMethod != "" {
		cmd.Printf("  Loaded:   %s\n", result.LoadingMethod)
	}
	if result.ChunkingMethod != "" {
		cmd.Printf("  Chunked:  %s\n", result.ChunkingMethod)
	}
	if !result.Timestamp.IsZero() {
		cmd.Printf("  Created:  %s\n", result.Timestamp.Format("2006-01-02 15:04:05"))
	}

	preview := chunkPreview
	if preview > len(result.Chunks) {
		preview = len(result.Chunks)
	}
	if preview > 0 {
		cmd.Println()
		for i := 0; i < preview; i++ {
			c := result.Chunks[i]
			cmd.Printf("  [%d] pages %s, %d words\n", c.ID, c.PageRange, c.WordCount)
			cmd.Printf("      %s\n", truncate(c.Content, 120))
		}
		if len(result.Chunks) > preview {
			cmd.Printf("  ... %d more chunks\n", len(result.Chunks)-preview)
		}
	}
	return nil
}

// truncate shortens s to at most n runes; byte indexing would split
// multibyte characters in document text.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
