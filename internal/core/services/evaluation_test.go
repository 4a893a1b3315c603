package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
)

const querySetCSV = `ID,Disclosure Requirement,Corresponding Text,Page Number,Compliance Status
GOV-1,Board composition,The board shall disclose its composition,"3,5,7",fully_found
GOV-2,Risk management,Material risks shall be described,12,partially_found
GOV-3,Unlabeled requirement,No ground truth recorded,,not_found
`

func newTestScorer(search driven.SearchAPI) *EvaluationScorer {
	return NewEvaluationScorer(search, domain.DefaultComplianceBands())
}

func TestParseQuerySet(t *testing.T) {
	scorer := newTestScorer(newMockBackend())

	queries, diagnostics, err := scorer.ParseQuerySet(strings.NewReader(querySetCSV))
	require.NoError(t, err)
	require.Len(t, queries, 3)

	assert.Equal(t, "GOV-1", queries[0].ID)
	assert.Equal(t, "Board composition", queries[0].Requirement)
	assert.Equal(t, []int{3, 5, 7}, queries[0].ExpectedPages)
	assert.Equal(t, "fully_found", queries[0].LabelledStatus)
	assert.Equal(t,
		"GOV-1 Board composition The board shall disclose its composition",
		queries[0].CombinedText)

	assert.Equal(t, []int{12}, queries[1].ExpectedPages)

	// The unlabeled row is kept and flagged, not dropped.
	assert.Empty(t, queries[2].ExpectedPages)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "GOV-3", diagnostics[0].RowID)
}

func TestParseQuerySet_HeaderCaseInsensitive(t *testing.T) {
	scorer := newTestScorer(newMockBackend())
	csv := "id,DISCLOSURE REQUIREMENT,corresponding text,Page Number\nE1-1,Transition plan,text,4\n"

	queries, diagnostics, err := scorer.ParseQuerySet(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Empty(t, diagnostics)
	assert.Equal(t, []int{4}, queries[0].ExpectedPages)
}

func TestParseQuerySet_MissingColumn(t *testing.T) {
	scorer := newTestScorer(newMockBackend())

	_, _, err := scorer.ParseQuerySet(strings.NewReader("ID,Corresponding Text\nGOV-1,text\n"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "disclosure requirement")
}

func TestParsePages_SkipsNonNumericFragments(t *testing.T) {
	assert.Equal(t, []int{3, 5, 7}, parsePages("3, 5 ,7"))
	assert.Equal(t, []int{12}, parsePages("12, n/a"))
	assert.Nil(t, parsePages(""))
	assert.Nil(t, parsePages("unknown"))
}

func TestRun_ScoresAgainstRetrievedPages(t *testing.T) {
	backend := newMockBackend()
	backend.searchFn = func(_ context.Context, req driven.SearchRequest) (*driven.SearchResponse, error) {
		// Retrieval returns pages 5, 7 and 9 for every query.
		return &driven.SearchResponse{Results: []domain.SearchResult{
			{Score: 0.9, Metadata: domain.ResultMetadata{Page: 5}},
			{Score: 0.8, Metadata: domain.ResultMetadata{Page: 7}},
			{Score: 0.7, Metadata: domain.ResultMetadata{Page: 9}},
		}}, nil
	}
	scorer := newTestScorer(backend)

	queries := []domain.EvaluationQuery{
		{ID: "GOV-1", CombinedText: "board composition", ExpectedPages: []int{3, 5, 7}},
	}
	report, err := scorer.Run(context.Background(), queries, driving.EvaluationOptions{
		CollectionID: "esrs_hnsw", TopK: 3, Threshold: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.InDelta(t, 2.0/3.0, row.ScoreHit, 1e-9)
	assert.InDelta(t, 2.0/3.0, row.ScoreFind, 1e-9)
	assert.Equal(t, domain.CompliancePartiallyFound, row.Compliance)
	assert.Equal(t, []int{5, 7, 9}, row.FoundPages)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "esrs_hnsw", report.CollectionID)
}

func TestRun_AveragesIncludeZeroScoredRows(t *testing.T) {
	backend := newMockBackend()
	backend.searchFn = func(_ context.Context, req driven.SearchRequest) (*driven.SearchResponse, error) {
		if strings.Contains(req.Query, "hit") {
			return &driven.SearchResponse{Results: []domain.SearchResult{
				{Metadata: domain.ResultMetadata{Page: 1}},
			}}, nil
		}
		// The second query retrieves nothing relevant.
		return &driven.SearchResponse{Results: []domain.SearchResult{
			{Metadata: domain.ResultMetadata{Page: 99}},
		}}, nil
	}
	scorer := newTestScorer(backend)

	queries := []domain.EvaluationQuery{
		{ID: "Q1", CombinedText: "hit query", ExpectedPages: []int{1}},
		{ID: "Q2", CombinedText: "miss query", ExpectedPages: []int{2}},
	}
	report, err := scorer.Run(context.Background(), queries, driving.EvaluationOptions{
		CollectionID: "c", TopK: 1,
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	assert.Equal(t, domain.ComplianceFullyFound, report.Rows[0].Compliance)
	assert.Equal(t, domain.ComplianceNotFound, report.Rows[1].Compliance)

	// The zero-scored row drags the average down; it is never skipped.
	assert.InDelta(t, 0.5, report.Averages.ScoreHit, 1e-9)
	assert.InDelta(t, 0.5, report.Averages.ScoreFind, 1e-9)
	assert.Equal(t, 2, report.TotalQueries)
}

func TestRun_EmptyExpectedPagesScoresZero(t *testing.T) {
	backend := newMockBackend()
	backend.searchFn = func(_ context.Context, _ driven.SearchRequest) (*driven.SearchResponse, error) {
		return &driven.SearchResponse{Results: []domain.SearchResult{
			{Metadata: domain.ResultMetadata{Page: 4}},
		}}, nil
	}
	scorer := newTestScorer(backend)

	diagnostics := []domain.RowDiagnostic{{RowID: "Q1", Reason: "no parseable expected pages on line 2"}}
	report, err := scorer.Run(context.Background(), []domain.EvaluationQuery{
		{ID: "Q1", CombinedText: "unlabeled"},
	}, driving.EvaluationOptions{CollectionID: "c", TopK: 1, Diagnostics: diagnostics})
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Zero(t, report.Rows[0].ScoreHit)
	assert.Zero(t, report.Rows[0].ScoreFind)
	assert.Equal(t, domain.ComplianceNotFound, report.Rows[0].Compliance)
	assert.Equal(t, diagnostics, report.Diagnostics)
}

func TestRun_SearchFailureAborts(t *testing.T) {
	backend := newMockBackend()
	backend.searchFn = func(_ context.Context, _ driven.SearchRequest) (*driven.SearchResponse, error) {
		return nil, errors.New("connection refused")
	}
	scorer := newTestScorer(backend)

	_, err := scorer.Run(context.Background(), []domain.EvaluationQuery{
		{ID: "Q1", CombinedText: "q", ExpectedPages: []int{1}},
	}, driving.EvaluationOptions{CollectionID: "c", TopK: 1})
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestRun_InputValidation(t *testing.T) {
	scorer := newTestScorer(newMockBackend())
	ctx := context.Background()

	_, err := scorer.Run(ctx, nil, driving.EvaluationOptions{CollectionID: "c"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = scorer.Run(ctx, []domain.EvaluationQuery{{ID: "Q1"}}, driving.EvaluationOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRun_CustomBandsChangeLabels(t *testing.T) {
	backend := newMockBackend()
	backend.searchFn = func(_ context.Context, _ driven.SearchRequest) (*driven.SearchResponse, error) {
		return &driven.SearchResponse{Results: []domain.SearchResult{
			{Metadata: domain.ResultMetadata{Page: 1}},
			{Metadata: domain.ResultMetadata{Page: 2}},
		}}, nil
	}
	// A lenient regime: 0.5 recall already counts as fully found.
	scorer := NewEvaluationScorer(backend, domain.ComplianceBands{
		FullyFoundAt:        0.5,
		PartiallyFoundAbove: 0.1,
	})

	report, err := scorer.Run(context.Background(), []domain.EvaluationQuery{
		{ID: "Q1", CombinedText: "q", ExpectedPages: []int{1, 3, 5, 7}},
	}, driving.EvaluationOptions{CollectionID: "c", TopK: 2})
	require.NoError(t, err)
	// Recall 1/4 with these bands is partially found.
	assert.Equal(t, domain.CompliancePartiallyFound, report.Rows[0].Compliance)
}
