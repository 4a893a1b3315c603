package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

// Ensure ArtifactRegistry implements the interface.
var _ driving.RegistryService = (*ArtifactRegistry)(nil)

// ArtifactRegistry is the in-memory model of which artifacts exist at
// each pipeline stage and which one is selected as the next stage's
// prerequisite. It is a cache over the backend: refreshed after every
// mutating call, never authoritative.
type ArtifactRegistry struct {
	mu       sync.RWMutex
	docs     driven.DocumentAPI
	embedded driven.EmbeddingAPI

	byKind   map[domain.ArtifactKind][]domain.Document
	selected map[domain.ArtifactKind]string
}

// NewArtifactRegistry creates a registry backed by the given APIs.
func NewArtifactRegistry(docs driven.DocumentAPI, embedded driven.EmbeddingAPI) *ArtifactRegistry {
	return &ArtifactRegistry{
		docs:     docs,
		embedded: embedded,
		byKind:   make(map[domain.ArtifactKind][]domain.Document),
		selected: make(map[domain.ArtifactKind]string),
	}
}

// List refreshes the cached view for one kind from the backend and
// returns it in backend order.
func (r *ArtifactRegistry) List(ctx context.Context, kind domain.ArtifactKind) ([]domain.Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown artifact kind %q", domain.ErrInvalidInput, kind)
	}

	// The backend has no indexed listing: indexed artifacts exist only
	// as local registrations from index responses. Refreshing them from
	// the generic documents endpoint would wipe them with the empty
	// answer it gives for unknown types.
	if kind == domain.KindIndexed {
		return r.Documents(kind), nil
	}

	var (
		listed []domain.Document
		err    error
	)
	if kind == domain.KindEmbedded {
		listed, err = r.embedded.ListEmbedded(ctx)
	} else {
		listed, err = r.docs.ListDocuments(ctx, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", kind, err)
	}

	for i := range listed {
		if listed[i].Kind == "" {
			listed[i].Kind = kind
		}
	}

	r.mu.Lock()
	r.byKind[kind] = listed
	r.mu.Unlock()

	logger.Debug("registry: listed %d %s documents", len(listed), kind)
	return r.Documents(kind), nil
}

// Hydrate merges detail records into the named summaries. One failing
// item never aborts the batch: the item keeps its summary fields, the
// failure is logged and reported alongside the complete list.
func (r *ArtifactRegistry) Hydrate(
	ctx context.Context, kind domain.ArtifactKind, names []string,
) ([]domain.Document, []driving.HydrationFailure) {
	// Indexed registrations already carry their full detail from the
	// index response; there is no server record to fetch.
	if kind == domain.KindIndexed {
		return r.Documents(kind), nil
	}

	var failures []driving.HydrationFailure

	for _, name := range names {
		detail, err := r.fetchDetail(ctx, kind, name)
		if err != nil {
			logger.Warn("registry: hydrating %s %q: %v", kind, name, err)
			failures = append(failures, driving.HydrationFailure{
				Name: name,
				Err:  fmt.Errorf("%w: %s: %v", domain.ErrPartialHydration, name, err),
			})
			continue
		}
		r.merge(kind, name, detail)
	}

	return r.Documents(kind), failures
}

func (r *ArtifactRegistry) fetchDetail(
	ctx context.Context, kind domain.ArtifactKind, name string,
) (*domain.Document, error) {
	if kind == domain.KindEmbedded {
		res, err := r.embedded.GetEmbedded(ctx, name)
		if err != nil {
			return nil, err
		}
		return embeddedDetail(res), nil
	}

	res, err := r.docs.GetDocument(ctx, name, kind)
	if err != nil {
		return nil, err
	}
	doc := res.Summary(kind)
	return &doc, nil
}

// embeddedDetail projects an embed result's metadata onto a Document.
func embeddedDetail(res *domain.EmbedResult) *domain.Document {
	doc := &domain.Document{Kind: domain.KindEmbedded}
	if res == nil || len(res.Embeddings) == 0 {
		return doc
	}
	first := res.Embeddings[0]
	doc.TotalChunks = first.TotalChunks
	doc.EmbeddingModel = first.EmbeddingModel
	doc.EmbeddingProvider = first.EmbeddingProvider
	doc.VectorDimension = first.VectorDimension
	doc.EmbeddingTimestamp = first.EmbeddingTimestamp
	return doc
}

func (r *ArtifactRegistry) merge(kind domain.ArtifactKind, name string, detail *domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.byKind[kind]
	for i := range docs {
		if docs[i].Name == name {
			docs[i].Merge(detail)
			return
		}
	}
}

// Documents returns a copy of the cached view for one kind.
func (r *ArtifactRegistry) Documents(kind domain.ArtifactKind) []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := r.byKind[kind]
	out := make([]domain.Document, len(docs))
	copy(out, docs)
	return out
}

// Delete removes an artifact server-side, then from the local view, and
// clears any selection - at the artifact's own stage or downstream -
// that referenced it. A prerequisite that no longer exists must not stay
// selected.
func (r *ArtifactRegistry) Delete(ctx context.Context, kind domain.ArtifactKind, name string) error {
	var err error
	if kind == domain.KindEmbedded {
		err = r.embedded.DeleteEmbedded(ctx, name)
	} else {
		err = r.docs.DeleteDocument(ctx, name, kind)
	}
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", kind, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.byKind[kind]
	for i := range docs {
		if docs[i].Name == name {
			r.byKind[kind] = append(docs[:i:i], docs[i+1:]...)
			break
		}
	}

	if r.selected[kind] == name {
		delete(r.selected, kind)
	}
	for _, down := range kind.Downstream() {
		if r.selected[down] == name {
			logger.Debug("registry: clearing orphaned %s selection %q", down, name)
			delete(r.selected, down)
		}
	}

	return nil
}

// Register inserts a freshly created artifact into the local view.
// A same-named entry is replaced in place: stage outputs are idempotent
// by name, not versioned.
func (r *ArtifactRegistry) Register(kind domain.ArtifactKind, doc domain.Document) {
	if doc.Kind == "" {
		doc.Kind = kind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.byKind[kind]
	for i := range docs {
		if docs[i].Name == doc.Name {
			docs[i] = doc
			return
		}
	}
	r.byKind[kind] = append(docs, doc)
}

// Select marks a cached artifact as the chosen prerequisite for the
// next stage. The registry never fabricates a selection for an artifact
// it does not hold.
func (r *ArtifactRegistry) Select(kind domain.ArtifactKind, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, doc := range r.byKind[kind] {
		if doc.Name == name {
			r.selected[kind] = name
			return nil
		}
	}
	return fmt.Errorf("%w: no %s document named %q", domain.ErrNotFound, kind, name)
}

// Selected returns the current selection for a kind, or "".
func (r *ArtifactRegistry) Selected(kind domain.ArtifactKind) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected[kind]
}

// ClearSelection drops the selection for a kind.
func (r *ArtifactRegistry) ClearSelection(kind domain.ArtifactKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selected, kind)
}
