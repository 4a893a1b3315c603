package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

var _ driving.EvaluationService = (*EvaluationScorer)(nil)

// Query-set CSV column headers. Matching is case-insensitive and
// ignores surrounding whitespace.
const (
	colID          = "id"
	colRequirement = "disclosure requirement"
	colText        = "corresponding text"
	colPages       = "page number"
	colStatus      = "compliance status"
)

// EvaluationScorer runs the client-side evaluation path: one search per
// labeled query, scored locally against the ground-truth page sets.
type EvaluationScorer struct {
	search driven.SearchAPI
	bands  domain.ComplianceBands
}

// NewEvaluationScorer creates a scorer over the given search API using
// the supplied compliance bands.
func NewEvaluationScorer(search driven.SearchAPI, bands domain.ComplianceBands) *EvaluationScorer {
	return &EvaluationScorer{search: search, bands: bands}
}

// ParseQuerySet reads the labeled query CSV. A row with no parseable
// expected pages is kept, not dropped: it scores zero and is flagged in
// the returned diagnostics so the aggregate stays honest.
func (s *EvaluationScorer) ParseQuerySet(r io.Reader) ([]domain.EvaluationQuery, []domain.RowDiagnostic, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading query set header: %v", domain.ErrInvalidInput, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colID, colRequirement, colPages} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("%w: query set missing column %q", domain.ErrInvalidInput, required)
		}
	}

	var queries []domain.EvaluationQuery
	var diagnostics []domain.RowDiagnostic
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading query set line %d: %v", domain.ErrInvalidInput, line, err)
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		query := domain.EvaluationQuery{
			ID:             field(colID),
			Requirement:    field(colRequirement),
			ExpectedPages:  parsePages(field(colPages)),
			LabelledStatus: field(colStatus),
		}
		query.CombinedText = strings.TrimSpace(strings.Join([]string{
			query.ID, query.Requirement, field(colText),
		}, " "))

		if query.ID == "" && query.CombinedText == "" {
			continue // blank line
		}
		if len(query.ExpectedPages) == 0 {
			diagnostics = append(diagnostics, domain.RowDiagnostic{
				RowID:  query.ID,
				Reason: fmt.Sprintf("no parseable expected pages on line %d", line),
			})
		}
		queries = append(queries, query)
	}

	logger.Debug("evaluation: parsed %d queries, %d flagged", len(queries), len(diagnostics))
	return queries, diagnostics, nil
}

// parsePages extracts page numbers from a comma-separated cell.
// Non-numeric fragments are skipped rather than failing the row.
func parsePages(cell string) []int {
	if cell == "" {
		return nil
	}
	var pages []int
	for _, part := range strings.Split(cell, ",") {
		page, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

// Run searches each query against the collection and scores the
// retrieved page sets. Every query contributes a row, zero-scored ones
// included, and the averages are computed over all of them.
func (s *EvaluationScorer) Run(
	ctx context.Context, queries []domain.EvaluationQuery, opts driving.EvaluationOptions,
) (*domain.EvaluationReport, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: empty query set", domain.ErrInvalidInput)
	}
	if opts.CollectionID == "" {
		return nil, fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}

	report := &domain.EvaluationReport{
		RunID:        uuid.NewString(),
		CollectionID: opts.CollectionID,
		Rows:         make([]domain.EvaluationRow, 0, len(queries)),
		TotalQueries: len(queries),
		Diagnostics:  append([]domain.RowDiagnostic(nil), opts.Diagnostics...),
	}

	var sumHit, sumFind float64
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, classify(err)
		}

		resp, err := s.search.Search(ctx, driven.SearchRequest{
			Query:        query.CombinedText,
			CollectionID: opts.CollectionID,
			TopK:         opts.TopK,
			Threshold:    opts.Threshold,
		})
		if err != nil {
			return nil, classify(fmt.Errorf("searching query %s: %w", query.ID, err))
		}

		row := scoreRow(query, resp.Results, s.bands)
		report.Rows = append(report.Rows, row)
		sumHit += row.ScoreHit
		sumFind += row.ScoreFind
		logger.Debug("evaluation: %s hit=%.3f find=%.3f %s",
			row.ID, row.ScoreHit, row.ScoreFind, row.Compliance)
	}

	n := float64(len(report.Rows))
	report.Averages = domain.AverageScores{
		ScoreHit:  sumHit / n,
		ScoreFind: sumFind / n,
	}

	logger.Info("evaluation run %s: %d queries, avg hit %.3f, avg find %.3f",
		report.RunID, report.TotalQueries,
		report.Averages.ScoreHit, report.Averages.ScoreFind)
	return report, nil
}

// scoreRow scores one query against its retrieved results.
func scoreRow(
	query domain.EvaluationQuery, results []domain.SearchResult, bands domain.ComplianceBands,
) domain.EvaluationRow {
	found := make([]int, 0, len(results))
	for _, result := range results {
		found = append(found, result.Metadata.Page)
	}

	hit, find := domain.ScoreRetrieval(query.ExpectedPages, found)
	return domain.EvaluationRow{
		ID:            query.ID,
		Requirement:   query.Requirement,
		ExpectedPages: query.ExpectedPages,
		FoundPages:    found,
		ScoreHit:      hit,
		ScoreFind:     find,
		Compliance:    bands.Classify(find),
	}
}
