package driven

import (
	"context"
	"time"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
)

// HistoryEntry is a stored evaluation run summary.
type HistoryEntry struct {
	RunID        string
	CollectionID string
	TotalQueries int
	AvgScoreHit  float64
	AvgScoreFind float64
	CreatedAt    time.Time
}

// HistoryStore persists evaluation reports locally so past runs can be
// compared after the session ends. The backend owns all pipeline state;
// this store only archives client-produced reports.
type HistoryStore interface {
	// SaveReport archives one evaluation report.
	SaveReport(ctx context.Context, report *domain.EvaluationReport) error

	// ListReports returns run summaries, newest first.
	ListReports(ctx context.Context) ([]HistoryEntry, error)

	// GetReport loads a full archived report by run ID.
	// Returns domain.ErrNotFound for unknown IDs.
	GetReport(ctx context.Context, runID string) (*domain.EvaluationReport, error)

	// Close releases the underlying storage.
	Close() error
}
