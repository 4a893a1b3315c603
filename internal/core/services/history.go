package services

import (
	"context"
	"fmt"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

var _ driving.HistoryService = (*RunHistory)(nil)

// RunHistory archives evaluation reports and reloads them for
// comparison across sessions.
type RunHistory struct {
	store driven.HistoryStore
}

// NewRunHistory creates a history service over the given store.
func NewRunHistory(store driven.HistoryStore) *RunHistory {
	return &RunHistory{store: store}
}

// Archive persists a completed report.
func (h *RunHistory) Archive(ctx context.Context, report *domain.EvaluationReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("%w: report without run ID", domain.ErrInvalidInput)
	}
	if err := h.store.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("archiving run %s: %w", report.RunID, err)
	}
	logger.Debug("history: archived run %s (%d rows)", report.RunID, len(report.Rows))
	return nil
}

// List returns archived run summaries, newest first.
func (h *RunHistory) List(ctx context.Context) ([]driven.HistoryEntry, error) {
	return h.store.ListReports(ctx)
}

// Get reloads one archived report by run ID.
func (h *RunHistory) Get(ctx context.Context, runID string) (*domain.EvaluationReport, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: run ID is required", domain.ErrInvalidInput)
	}
	return h.store.GetReport(ctx, runID)
}
