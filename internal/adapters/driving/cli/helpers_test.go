package cli

import (
	"context"
	"io"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
)

// mockPipeline implements driving.PipelineService with overridable
// function fields. Unset fields return empty successes.
type mockPipeline struct {
	loadFn     func(ctx context.Context, req driven.LoadRequest) (*domain.ChunkResult, error)
	chunkFn    func(ctx context.Context, req driven.ChunkRequest) (*domain.ChunkResult, error)
	embedFn    func(ctx context.Context, req driven.EmbedRequest) (*domain.EmbedResult, error)
	indexFn    func(ctx context.Context, req driven.IndexRequest) (*domain.IndexResult, error)
	searchFn   func(ctx context.Context, req driven.SearchRequest) ([]domain.SearchResult, error)
	generateFn func(ctx context.Context, req driven.GenerateRequest) (*domain.GenerateResult, error)
	evaluateFn func(ctx context.Context, req driven.EvaluateRequest) (*domain.EvaluationReport, error)
	handoff    *domain.GenerationInput
	states     []domain.StageState
}

func (m *mockPipeline) Load(ctx context.Context, req driven.LoadRequest) (*domain.ChunkResult, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, req)
	}
	return &domain.ChunkResult{Filename: req.Filename}, nil
}

func (m *mockPipeline) Chunk(ctx context.Context, req driven.ChunkRequest) (*domain.ChunkResult, error) {
	if m.chunkFn != nil {
		return m.chunkFn(ctx, req)
	}
	return &domain.ChunkResult{Filename: req.DocID}, nil
}

func (m *mockPipeline) Embed(ctx context.Context, req driven.EmbedRequest) (*domain.EmbedResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, req)
	}
	return &domain.EmbedResult{}, nil
}

func (m *mockPipeline) Index(ctx context.Context, req driven.IndexRequest) (*domain.IndexResult, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, req)
	}
	return &domain.IndexResult{Database: req.VectorDB}, nil
}

func (m *mockPipeline) Search(ctx context.Context, req driven.SearchRequest) ([]domain.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return nil, domain.ErrEmptyResult
}

func (m *mockPipeline) Generate(ctx context.Context, req driven.GenerateRequest) (*domain.GenerateResult, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return &domain.GenerateResult{}, nil
}

func (m *mockPipeline) Evaluate(ctx context.Context, req driven.EvaluateRequest) (*domain.EvaluationReport, error) {
	if m.evaluateFn != nil {
		return m.evaluateFn(ctx, req)
	}
	return &domain.EvaluationReport{}, nil
}

func (m *mockPipeline) Handoff() *domain.GenerationInput { return m.handoff }

func (m *mockPipeline) State(stage domain.Stage) domain.StageState {
	for _, s := range m.states {
		if s.Stage == stage {
			return s
		}
	}
	return domain.StageState{Stage: stage}
}

func (m *mockPipeline) States() []domain.StageState {
	if m.states != nil {
		return m.states
	}
	states := make([]domain.StageState, 0, len(domain.Stages()))
	for _, stage := range domain.Stages() {
		states = append(states, domain.StageState{Stage: stage})
	}
	return states
}

// mockRegistry implements driving.RegistryService over an in-memory
// document slice.
type mockRegistry struct {
	docs     []domain.Document
	selected map[domain.ArtifactKind]string
	listErr  error
	deleted  []string
}

func (m *mockRegistry) List(_ context.Context, kind domain.ArtifactKind) ([]domain.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.byKind(kind), nil
}

func (m *mockRegistry) Hydrate(_ context.Context, kind domain.ArtifactKind, _ []string) ([]domain.Document, []driving.HydrationFailure) {
	return m.byKind(kind), nil
}

func (m *mockRegistry) Documents(kind domain.ArtifactKind) []domain.Document {
	return m.byKind(kind)
}

func (m *mockRegistry) Delete(_ context.Context, _ domain.ArtifactKind, name string) error {
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *mockRegistry) Register(kind domain.ArtifactKind, doc domain.Document) {
	doc.Kind = kind
	m.docs = append(m.docs, doc)
}

func (m *mockRegistry) Select(kind domain.ArtifactKind, name string) error {
	for _, d := range m.byKind(kind) {
		if d.Name == name {
			if m.selected == nil {
				m.selected = make(map[domain.ArtifactKind]string)
			}
			m.selected[kind] = name
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockRegistry) Selected(kind domain.ArtifactKind) string { return m.selected[kind] }

func (m *mockRegistry) ClearSelection(kind domain.ArtifactKind) { delete(m.selected, kind) }

func (m *mockRegistry) byKind(kind domain.ArtifactKind) []domain.Document {
	if kind == domain.KindAll {
		return m.docs
	}
	var out []domain.Document
	for _, d := range m.docs {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// mockEvaluation implements driving.EvaluationService.
type mockEvaluation struct {
	parseFn func(r io.Reader) ([]domain.EvaluationQuery, []domain.RowDiagnostic, error)
	runFn   func(ctx context.Context, queries []domain.EvaluationQuery, opts driving.EvaluationOptions) (*domain.EvaluationReport, error)
}

func (m *mockEvaluation) ParseQuerySet(r io.Reader) ([]domain.EvaluationQuery, []domain.RowDiagnostic, error) {
	if m.parseFn != nil {
		return m.parseFn(r)
	}
	return nil, nil, nil
}

func (m *mockEvaluation) Run(ctx context.Context, queries []domain.EvaluationQuery, opts driving.EvaluationOptions) (*domain.EvaluationReport, error) {
	if m.runFn != nil {
		return m.runFn(ctx, queries, opts)
	}
	return &domain.EvaluationReport{}, nil
}

// mockHistory implements driving.HistoryService in memory.
type mockHistory struct {
	archived []*domain.EvaluationReport
	entries  []driven.HistoryEntry
	reports  map[string]*domain.EvaluationReport
}

func (m *mockHistory) Archive(_ context.Context, report *domain.EvaluationReport) error {
	m.archived = append(m.archived, report)
	return nil
}

func (m *mockHistory) List(_ context.Context) ([]driven.HistoryEntry, error) {
	return m.entries, nil
}

func (m *mockHistory) Get(_ context.Context, runID string) (*domain.EvaluationReport, error) {
	report, ok := m.reports[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return report, nil
}

// setupTestServices swaps the package-level services for mocks and
// returns a cleanup restoring the originals.
func setupTestServices() func() {
	oldRegistry := registryService
	oldPipeline := pipelineService
	oldEvaluation := evaluationService
	oldHistory := historyService
	oldBackend := backendClient

	SetServices(Services{
		Registry:   &mockRegistry{},
		Pipeline:   &mockPipeline{},
		Evaluation: &mockEvaluation{},
		History:    &mockHistory{},
	})

	return func() {
		registryService = oldRegistry
		pipelineService = oldPipeline
		evaluationService = oldEvaluation
		historyService = oldHistory
		backendClient = oldBackend
	}
}
