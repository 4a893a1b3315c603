package services

import (
	"context"
	"sync"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// mockBackend implements driven.Backend. Each call is counted; behaviour
// is overridden per test through the function fields, with nil fields
// returning empty successes.
type mockBackend struct {
	mu    sync.Mutex
	calls map[string]int

	listDocumentsFn  func(ctx context.Context, kind domain.ArtifactKind) ([]domain.Document, error)
	getDocumentFn    func(ctx context.Context, name string, kind domain.ArtifactKind) (*domain.ChunkResult, error)
	deleteDocumentFn func(ctx context.Context, name string, kind domain.ArtifactKind) error
	loadFn           func(ctx context.Context, req driven.LoadRequest) (*domain.ChunkResult, error)
	chunkFn          func(ctx context.Context, req driven.ChunkRequest) (*domain.ChunkResult, error)
	embedFn          func(ctx context.Context, req driven.EmbedRequest) (*domain.EmbedResult, error)
	listEmbeddedFn   func(ctx context.Context) ([]domain.Document, error)
	getEmbeddedFn    func(ctx context.Context, name string) (*domain.EmbedResult, error)
	deleteEmbeddedFn func(ctx context.Context, name string) error
	indexFn          func(ctx context.Context, req driven.IndexRequest) (*domain.IndexResult, error)
	searchFn         func(ctx context.Context, req driven.SearchRequest) (*driven.SearchResponse, error)
	generateFn       func(ctx context.Context, req driven.GenerateRequest) (*domain.GenerateResult, error)
	evaluateFn       func(ctx context.Context, req driven.EvaluateRequest) (*domain.EvaluationReport, error)
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: make(map[string]int)}
}

func (m *mockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockBackend) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBackend) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockBackend) ListDocuments(ctx context.Context, kind domain.ArtifactKind) ([]domain.Document, error) {
	m.record("ListDocuments")
	if m.listDocumentsFn != nil {
		return m.listDocumentsFn(ctx, kind)
	}
	return nil, nil
}

func (m *mockBackend) GetDocument(ctx context.Context, name string, kind domain.ArtifactKind) (*domain.ChunkResult, error) {
	m.record("GetDocument")
	if m.getDocumentFn != nil {
		return m.getDocumentFn(ctx, name, kind)
	}
	return &domain.ChunkResult{Filename: name}, nil
}

func (m *mockBackend) DeleteDocument(ctx context.Context, name string, kind domain.ArtifactKind) error {
	m.record("DeleteDocument")
	if m.deleteDocumentFn != nil {
		return m.deleteDocumentFn(ctx, name, kind)
	}
	return nil
}

func (m *mockBackend) Load(ctx context.Context, req driven.LoadRequest) (*domain.ChunkResult, error) {
	m.record("Load")
	if m.loadFn != nil {
		return m.loadFn(ctx, req)
	}
	return &domain.ChunkResult{Filename: req.Filename}, nil
}

func (m *mockBackend) Chunk(ctx context.Context, req driven.ChunkRequest) (*domain.ChunkResult, error) {
	m.record("Chunk")
	if m.chunkFn != nil {
		return m.chunkFn(ctx, req)
	}
	return &domain.ChunkResult{Filename: req.DocID}, nil
}

func (m *mockBackend) Embed(ctx context.Context, req driven.EmbedRequest) (*domain.EmbedResult, error) {
	m.record("Embed")
	if m.embedFn != nil {
		return m.embedFn(ctx, req)
	}
	return &domain.EmbedResult{}, nil
}

func (m *mockBackend) ListEmbedded(ctx context.Context) ([]domain.Document, error) {
	m.record("ListEmbedded")
	if m.listEmbeddedFn != nil {
		return m.listEmbeddedFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) GetEmbedded(ctx context.Context, name string) (*domain.EmbedResult, error) {
	m.record("GetEmbedded")
	if m.getEmbeddedFn != nil {
		return m.getEmbeddedFn(ctx, name)
	}
	return &domain.EmbedResult{}, nil
}

func (m *mockBackend) DeleteEmbedded(ctx context.Context, name string) error {
	m.record("DeleteEmbedded")
	if m.deleteEmbeddedFn != nil {
		return m.deleteEmbeddedFn(ctx, name)
	}
	return nil
}

func (m *mockBackend) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	m.record("ListProviders")
	return nil, nil
}

func (m *mockBackend) ListCollections(ctx context.Context, provider string) ([]domain.Collection, error) {
	m.record("ListCollections")
	return nil, nil
}

func (m *mockBackend) GetCollection(ctx context.Context, provider, name string) (*domain.IndexResult, error) {
	m.record("GetCollection")
	return &domain.IndexResult{CollectionName: name, Database: provider}, nil
}

func (m *mockBackend) DeleteCollection(ctx context.Context, provider, name string) error {
	m.record("DeleteCollection")
	return nil
}

func (m *mockBackend) Index(ctx context.Context, req driven.IndexRequest) (*domain.IndexResult, error) {
	m.record("Index")
	if m.indexFn != nil {
		return m.indexFn(ctx, req)
	}
	return &domain.IndexResult{Database: req.VectorDB, IndexMode: req.IndexMode}, nil
}

func (m *mockBackend) Search(ctx context.Context, req driven.SearchRequest) (*driven.SearchResponse, error) {
	m.record("Search")
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &driven.SearchResponse{}, nil
}

func (m *mockBackend) SaveSearch(ctx context.Context, req driven.SaveSearchRequest) (string, error) {
	m.record("SaveSearch")
	return "", nil
}

func (m *mockBackend) ListSearchResults(ctx context.Context) ([]driven.SearchResultFile, error) {
	m.record("ListSearchResults")
	return nil, nil
}

func (m *mockBackend) GetSearchResults(ctx context.Context, id string) (*domain.SavedSearch, error) {
	m.record("GetSearchResults")
	return &domain.SavedSearch{ID: id}, nil
}

func (m *mockBackend) ListModels(ctx context.Context) (map[string]map[string]string, error) {
	m.record("ListModels")
	return nil, nil
}

func (m *mockBackend) Generate(ctx context.Context, req driven.GenerateRequest) (*domain.GenerateResult, error) {
	m.record("Generate")
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return &domain.GenerateResult{}, nil
}

func (m *mockBackend) Evaluate(ctx context.Context, req driven.EvaluateRequest) (*domain.EvaluationReport, error) {
	m.record("Evaluate")
	if m.evaluateFn != nil {
		return m.evaluateFn(ctx, req)
	}
	return &domain.EvaluationReport{}, nil
}
