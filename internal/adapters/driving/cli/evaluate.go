package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

var (
	evaluateCollection string
	evaluateTopK       int
	evaluateThreshold  float64
	evaluateRemote     bool
	evaluateNoArchive  bool
	evaluateJSON       bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [query-set.csv]",
	Short: "Score retrieval quality against a labeled query set",
	Long: `Runs one search per labeled query and scores the retrieved pages
against the expected pages: score_hit is precision (retrieved pages
that were expected), score_find is recall (expected pages that were
retrieved). The compliance label derives from score_find.

Scoring happens client-side by default; --remote sends the CSV to the
processing service and lets it score. Reports are archived locally
unless --no-archive is given; see "ragaudit history".`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateCollection, "collection", "c", "", "collection ID to evaluate against (required)")
	evaluateCmd.Flags().IntVarP(&evaluateTopK, "top-k", "k", 10, "hits to retrieve per query")
	evaluateCmd.Flags().Float64VarP(&evaluateThreshold, "threshold", "t", 0.7, "minimum similarity score")
	evaluateCmd.Flags().BoolVar(&evaluateRemote, "remote", false, "let the processing service score the run")
	evaluateCmd.Flags().BoolVar(&evaluateNoArchive, "no-archive", false, "do not archive the report locally")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	var report *domain.EvaluationReport
	var err error
	if evaluateRemote {
		report, err = evaluateRemotely(ctx, path)
	} else {
		report, err = evaluateLocally(ctx, path)
	}
	if err != nil {
		return err
	}

	if !evaluateNoArchive && historyService != nil {
		if archiveErr := historyService.Archive(ctx, report); archiveErr != nil {
			logger.Warn("failed to archive report %s: %v", report.RunID, archiveErr)
		}
	}

	if evaluateJSON {
		return outputReportJSON(cmd, report)
	}
	return outputReportTable(cmd, report)
}

func evaluateLocally(ctx context.Context, path string) (*domain.EvaluationReport, error) {
	if evaluationService == nil {
		return nil, errors.New("evaluation service not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	queries, diagnostics, err := evaluationService.ParseQuerySet(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query set: %w", err)
	}

	report, err := evaluationService.Run(ctx, queries, driving.EvaluationOptions{
		CollectionID: evaluateCollection,
		TopK:         evaluateTopK,
		Threshold:    evaluateThreshold,
		Diagnostics:  diagnostics,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return report, nil
}

func evaluateRemotely(ctx context.Context, path string) (*domain.EvaluationReport, error) {
	if pipelineService == nil {
		return nil, errors.New("pipeline service not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	report, err := pipelineService.Evaluate(ctx, driven.EvaluateRequest{
		Filename:     filepath.Base(path),
		CSV:          f,
		CollectionID: evaluateCollection,
		TopK:         evaluateTopK,
		Threshold:    evaluateThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return report, nil
}

func outputReportJSON(cmd *cobra.Command, report *domain.EvaluationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputReportTable(cmd *cobra.Command, report *domain.EvaluationReport) error {
	cmd.Printf("Run %s  (collection %s, %d queries)\n\n", report.RunID, report.CollectionID, report.TotalQueries)

	for i := range report.Rows {
		row := report.Rows[i]
		cmd.Printf("  %-10s hit %.2f  find %.2f  %s\n", row.ID, row.ScoreHit, row.ScoreFind, row.Compliance)
		cmd.Printf("             expected %v  found %v\n", row.ExpectedPages, row.FoundPages)
	}

	cmd.Printf("\nAverages: hit %.3f  find %.3f\n", report.Averages.ScoreHit, report.Averages.ScoreFind)

	if len(report.Diagnostics) > 0 {
		cmd.Println("\nDiagnostics:")
		for _, d := range report.Diagnostics {
			cmd.Printf("  %s: %s\n", d.RowID, d.Reason)
		}
	}
	return nil
}
