package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

var (
	loadMethod           string
	loadStrategy         string
	loadChunkingStrategy string
	loadMaxCharacters    int
	loadNewAfterNChars   int
	loadCombineUnder     int
	loadOverlap          int
	loadOverlapAll       bool
	loadMultiPage        bool
	loadJSON             bool
)

var loadCmd = &cobra.Command{
	Use:   "load [pdf-file]",
	Short: "Upload and parse a PDF",
	Long: `Uploads a PDF to the processing service and extracts its text.

The extraction method defaults to pymupdf. The unstructured method
additionally accepts a strategy (fast, hi_res, ocr_only) and its own
chunking options; other methods ignore those flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadMethod, "method", "m", domain.LoadingPyMuPDF, "extraction method (pymupdf, pypdf, unstructured)")
	loadCmd.Flags().StringVar(&loadStrategy, "strategy", domain.StrategyFast, "unstructured extraction strategy")
	loadCmd.Flags().StringVar(&loadChunkingStrategy, "chunking-strategy", "basic", "unstructured chunking strategy (basic, by_title)")
	loadCmd.Flags().IntVar(&loadMaxCharacters, "max-characters", 4000, "unstructured: hard chunk size limit")
	loadCmd.Flags().IntVar(&loadNewAfterNChars, "new-after-n-chars", 3000, "unstructured: soft chunk size limit")
	loadCmd.Flags().IntVar(&loadCombineUnder, "combine-under", 500, "unstructured: merge chunks below this size")
	loadCmd.Flags().IntVar(&loadOverlap, "overlap", 200, "unstructured: chunk overlap in characters")
	loadCmd.Flags().BoolVar(&loadOverlapAll, "overlap-all", false, "unstructured: overlap every chunk boundary")
	loadCmd.Flags().BoolVar(&loadMultiPage, "multipage-sections", true, "unstructured: allow sections to span pages")
	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s is not a PDF file", domain.ErrInvalidInput, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	req := driven.LoadRequest{
		Filename:      filepath.Base(path),
		Content:       f,
		LoadingMethod: loadMethod,
	}
	if loadMethod == domain.LoadingUnstructured {
		req.Strategy = loadStrategy
		req.ChunkingStrategy = loadChunkingStrategy
		req.ChunkingOptions = &driven.UnstructuredOptions{
			MaxCharacters:          loadMaxCharacters,
			NewAfterNChars:         loadNewAfterNChars,
			CombineTextUnderNChars: loadCombineUnder,
			Overlap:                loadOverlap,
			OverlapAll:             loadOverlapAll,
			MultiPageSections:      loadMultiPage,
		}
	}

	result, err := pipelineService.Load(context.Background(), req)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if loadJSON {
		return outputChunkResultJSON(cmd, result)
	}
	return outputChunkResultTable(cmd, result)
}
