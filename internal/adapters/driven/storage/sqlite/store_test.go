package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(runID string) *domain.EvaluationReport {
	return &domain.EvaluationReport{
		RunID:        runID,
		CollectionID: "esrs_hnsw",
		Rows: []domain.EvaluationRow{
			{
				ID:            "GOV-1",
				Requirement:   "Board composition",
				ExpectedPages: []int{3, 5, 7},
				FoundPages:    []int{5, 7, 9},
				ScoreHit:      2.0 / 3.0,
				ScoreFind:     2.0 / 3.0,
				Compliance:    domain.CompliancePartiallyFound,
			},
			{
				ID:            "GOV-2",
				Requirement:   "Risk management",
				ExpectedPages: []int{12},
				FoundPages:    []int{12},
				ScoreHit:      1,
				ScoreFind:     1,
				Compliance:    domain.ComplianceFullyFound,
			},
		},
		Averages:     domain.AverageScores{ScoreHit: 5.0 / 6.0, ScoreFind: 5.0 / 6.0},
		TotalQueries: 2,
		Diagnostics: []domain.RowDiagnostic{
			{RowID: "GOV-3", Reason: "no parseable expected pages on line 4"},
		},
	}
}

func TestSaveAndGetReport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := sampleReport("run-1")
	require.NoError(t, store.SaveReport(ctx, report))

	loaded, err := store.GetReport(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, report.CollectionID, loaded.CollectionID)
	assert.Equal(t, report.TotalQueries, loaded.TotalQueries)
	assert.InDelta(t, report.Averages.ScoreFind, loaded.Averages.ScoreFind, 1e-9)
	require.Len(t, loaded.Rows, 2)
	assert.Equal(t, report.Rows[0].ExpectedPages, loaded.Rows[0].ExpectedPages)
	assert.Equal(t, report.Rows[0].Compliance, loaded.Rows[0].Compliance)
	assert.Equal(t, report.Rows[1].ID, loaded.Rows[1].ID)
	assert.Equal(t, report.Diagnostics, loaded.Diagnostics)
}

func TestGetReport_Unknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetReport(context.Background(), "no-such-run")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReports(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveReport(ctx, sampleReport("run-a")))
	require.NoError(t, store.SaveReport(ctx, sampleReport("run-b")))

	entries, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, "esrs_hnsw", entry.CollectionID)
		assert.Equal(t, 2, entry.TotalQueries)
		assert.InDelta(t, 5.0/6.0, entry.AvgScoreHit, 1e-9)
	}
}

func TestSaveReport_DuplicateRunID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveReport(ctx, sampleReport("run-1")))
	assert.Error(t, store.SaveReport(ctx, sampleReport("run-1")))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveReport(context.Background(), sampleReport("run-1")))
	require.NoError(t, store.Close())

	// Reopening runs migrate again against the existing schema.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.GetReport(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, loaded.Rows, 2)
}
