package driving

import (
	"context"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// HydrationFailure records one item that could not be hydrated during a
// best-effort batch merge.
type HydrationFailure struct {
	Name string
	Err  error
}

// RegistryService tracks which artifacts exist for each pipeline stage
// and which one is selected as the prerequisite input for the next
// stage. It is a cache over the backend, never a source of truth.
type RegistryService interface {
	// List refreshes and returns the summaries for one artifact kind,
	// in backend order.
	List(ctx context.Context, kind domain.ArtifactKind) ([]domain.Document, error)

	// Hydrate merges detail records into the named summaries. Each
	// failure is isolated: the item keeps its summary fields and the
	// failure is returned alongside the (complete) document list.
	Hydrate(ctx context.Context, kind domain.ArtifactKind, names []string) ([]domain.Document, []HydrationFailure)

	// Documents returns the cached view for one kind without a
	// backend round trip.
	Documents(kind domain.ArtifactKind) []domain.Document

	// Delete removes an artifact server-side and locally, clearing any
	// downstream selection that referenced it.
	Delete(ctx context.Context, kind domain.ArtifactKind, name string) error

	// Register inserts a freshly created artifact into the local view,
	// replacing any same-named entry (stage outputs are idempotent by
	// name, not versioned).
	Register(kind domain.ArtifactKind, doc domain.Document)

	// Select marks an artifact as the chosen prerequisite for the next
	// stage. Returns domain.ErrNotFound if the name is not cached.
	Select(kind domain.ArtifactKind, name string) error

	// Selected returns the current selection for a kind, or "".
	Selected(kind domain.ArtifactKind) string

	// ClearSelection drops the selection for a kind.
	ClearSelection(kind domain.ArtifactKind)
}

// HistoryService lists and reloads archived evaluation runs.
type HistoryService interface {
	Archive(ctx context.Context, report *domain.EvaluationReport) error
	List(ctx context.Context) ([]driven.HistoryEntry, error)
	Get(ctx context.Context, runID string) (*domain.EvaluationReport, error)
}
