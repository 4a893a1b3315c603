// Package messages defines Bubbletea message types for the control
// panel. Messages represent events flowing through the Elm architecture.
package messages

import (
	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// StageCompleted is sent when a pipeline stage invocation settles.
// Payload carries the stage's result for display; Err is set when the
// invocation failed (a declined gate check included).
type StageCompleted struct {
	Stage   domain.Stage
	Payload any
	Err     error
}

// SearchCompleted carries search hits back to the model. An empty-result
// search settles here with Err wrapping domain.ErrEmptyResult.
type SearchCompleted struct {
	Results []domain.SearchResult
	Err     error
}

// ArtifactsRefreshed carries a freshly listed artifact namespace.
type ArtifactsRefreshed struct {
	Kind      domain.ArtifactKind
	Documents []domain.Document
	Err       error
}

// HistoryLoaded carries archived run summaries for the evaluate tab.
type HistoryLoaded struct {
	Entries []driven.HistoryEntry
	Err     error
}
