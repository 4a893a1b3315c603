package tui

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driving/tui/messages"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
)

// stubRegistry implements driving.RegistryService for tests.
type stubRegistry struct {
	docs     map[domain.ArtifactKind][]domain.Document
	selected map[domain.ArtifactKind]string
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		docs:     make(map[domain.ArtifactKind][]domain.Document),
		selected: make(map[domain.ArtifactKind]string),
	}
}

func (s *stubRegistry) List(_ context.Context, kind domain.ArtifactKind) ([]domain.Document, error) {
	return s.docs[kind], nil
}

func (s *stubRegistry) Hydrate(_ context.Context, kind domain.ArtifactKind, _ []string) ([]domain.Document, []driving.HydrationFailure) {
	return s.docs[kind], nil
}

func (s *stubRegistry) Documents(kind domain.ArtifactKind) []domain.Document {
	return s.docs[kind]
}

func (s *stubRegistry) Delete(_ context.Context, kind domain.ArtifactKind, name string) error {
	return nil
}

func (s *stubRegistry) Register(kind domain.ArtifactKind, doc domain.Document) {
	s.docs[kind] = append(s.docs[kind], doc)
}

func (s *stubRegistry) Select(kind domain.ArtifactKind, name string) error {
	s.selected[kind] = name
	return nil
}

func (s *stubRegistry) Selected(kind domain.ArtifactKind) string { return s.selected[kind] }

func (s *stubRegistry) ClearSelection(kind domain.ArtifactKind) { delete(s.selected, kind) }

// stubPipeline implements driving.PipelineService for tests.
type stubPipeline struct {
	searchFn func(ctx context.Context, req driven.SearchRequest) ([]domain.SearchResult, error)
	handoff  *domain.GenerationInput
}

func (s *stubPipeline) Load(_ context.Context, req driven.LoadRequest) (*domain.ChunkResult, error) {
	return &domain.ChunkResult{Filename: req.Filename}, nil
}

func (s *stubPipeline) Chunk(_ context.Context, req driven.ChunkRequest) (*domain.ChunkResult, error) {
	return &domain.ChunkResult{Filename: req.DocID}, nil
}

func (s *stubPipeline) Embed(_ context.Context, _ driven.EmbedRequest) (*domain.EmbedResult, error) {
	return &domain.EmbedResult{}, nil
}

func (s *stubPipeline) Index(_ context.Context, req driven.IndexRequest) (*domain.IndexResult, error) {
	return &domain.IndexResult{Database: req.VectorDB}, nil
}

func (s *stubPipeline) Search(ctx context.Context, req driven.SearchRequest) ([]domain.SearchResult, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, req)
	}
	return nil, domain.ErrEmptyResult
}

func (s *stubPipeline) Generate(_ context.Context, _ driven.GenerateRequest) (*domain.GenerateResult, error) {
	return &domain.GenerateResult{Response: "answer"}, nil
}

func (s *stubPipeline) Evaluate(_ context.Context, _ driven.EvaluateRequest) (*domain.EvaluationReport, error) {
	return &domain.EvaluationReport{}, nil
}

func (s *stubPipeline) Handoff() *domain.GenerationInput { return s.handoff }

func (s *stubPipeline) State(stage domain.Stage) domain.StageState {
	return domain.StageState{Stage: stage}
}

func (s *stubPipeline) States() []domain.StageState {
	states := make([]domain.StageState, 0, len(domain.Stages()))
	for _, stage := range domain.Stages() {
		states = append(states, domain.StageState{Stage: stage})
	}
	return states
}

// stubHistory implements driving.HistoryService for tests.
type stubHistory struct {
	entries []driven.HistoryEntry
	listErr error
}

func (s *stubHistory) Archive(_ context.Context, _ *domain.EvaluationReport) error { return nil }

func (s *stubHistory) List(_ context.Context) ([]driven.HistoryEntry, error) {
	return s.entries, s.listErr
}

func (s *stubHistory) Get(_ context.Context, _ string) (*domain.EvaluationReport, error) {
	return nil, domain.ErrNotFound
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{
		Registry: newStubRegistry(),
		Pipeline: &stubPipeline{},
	})
	require.NoError(t, err)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(*App)
}

func TestNewApp_RequiresRegistry(t *testing.T) {
	_, err := NewApp(&Ports{Pipeline: &stubPipeline{}})
	assert.ErrorIs(t, err, ErrMissingRegistryService)
}

func TestNewApp_RequiresPipeline(t *testing.T) {
	_, err := NewApp(&Ports{Registry: newStubRegistry()})
	assert.ErrorIs(t, err, ErrMissingPipelineService)
}

func TestApp_StartsOnLoadTab(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, domain.StageLoad, app.Stage())
}

func TestApp_TabNavigationWraps(t *testing.T) {
	app := newTestApp(t)

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyLeft})
	app = model.(*App)
	assert.Equal(t, domain.StageEvaluate, app.Stage())

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRight})
	app = model.(*App)
	assert.Equal(t, domain.StageLoad, app.Stage())
}

func TestApp_ArtifactsRefreshedUpdatesList(t *testing.T) {
	app := newTestApp(t)

	model, _ := app.Update(messages.ArtifactsRefreshed{
		Kind: domain.KindLoaded,
		Documents: []domain.Document{
			{Name: "report.pdf", Kind: domain.KindLoaded},
		},
	})
	app = model.(*App)

	assert.Contains(t, app.View(), "report.pdf")
}

func TestApp_SearchCompletedShowsHits(t *testing.T) {
	app := newTestApp(t)

	// Focus the search tab.
	for app.Stage() != domain.StageSearch {
		model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRight})
		app = model.(*App)
	}

	model, _ := app.Update(messages.SearchCompleted{
		Results: []domain.SearchResult{
			{Score: 0.9, Text: "hit text", Metadata: domain.ResultMetadata{Source: "a.pdf", Page: 4}},
		},
	})
	app = model.(*App)

	view := app.View()
	assert.Contains(t, view, "a.pdf p.4")
	assert.Contains(t, view, "1 hits; generation armed")
}

func TestApp_SearchUsesCollectionNameOfSelectedIndex(t *testing.T) {
	registry := newStubRegistry()
	registry.docs[domain.KindIndexed] = []domain.Document{
		{
			Name:           "report_embedded.json",
			Kind:           domain.KindIndexed,
			CollectionName: "report_openai_20260301",
		},
	}
	registry.selected[domain.KindIndexed] = "report_embedded.json"

	var captured driven.SearchRequest
	pipeline := &stubPipeline{
		searchFn: func(_ context.Context, req driven.SearchRequest) ([]domain.SearchResult, error) {
			captured = req
			return []domain.SearchResult{{Score: 0.9}}, nil
		},
	}

	app, err := NewApp(&Ports{Registry: registry, Pipeline: pipeline})
	require.NoError(t, err)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app = model.(*App)

	for app.Stage() != domain.StageSearch {
		model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRight})
		app = model.(*App)
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, "report_openai_20260301", captured.CollectionID)
}

func TestApp_EvaluateTabListsArchivedRuns(t *testing.T) {
	history := &stubHistory{
		entries: []driven.HistoryEntry{
			{
				RunID:        "run-1",
				CollectionID: "esrs_hnsw",
				TotalQueries: 12,
				AvgScoreHit:  0.5,
				AvgScoreFind: 0.75,
				CreatedAt:    time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
			},
		},
	}
	app, err := NewApp(&Ports{
		Registry: newStubRegistry(),
		Pipeline: &stubPipeline{},
		History:  history,
	})
	require.NoError(t, err)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app = model.(*App)

	var cmd tea.Cmd
	for app.Stage() != domain.StageEvaluate {
		model, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRight})
		app = model.(*App)
	}
	require.NotNil(t, cmd, "entering the evaluate tab should load the archive")

	model, _ = app.Update(cmd())
	app = model.(*App)

	view := app.View()
	assert.Contains(t, view, "esrs_hnsw")
	assert.Contains(t, view, "12 queries")
	assert.Contains(t, view, "hit 0.500")
	assert.Contains(t, view, "find 0.750")
}

func TestApp_EvaluateTabWithoutHistoryShowsHint(t *testing.T) {
	app := newTestApp(t)

	for app.Stage() != domain.StageEvaluate {
		model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRight})
		app = model.(*App)
	}

	assert.Contains(t, app.View(), "No archived runs")
}

func TestApp_StageCompletedErrorShownInStatus(t *testing.T) {
	app := newTestApp(t)

	model, _ := app.Update(messages.StageCompleted{
		Stage: domain.StageChunk,
		Err:   domain.ErrTransport,
	})
	app = model.(*App)

	assert.Contains(t, app.View(), domain.ErrTransport.Error())
}

func TestApp_GenerateWithoutHandoffIsGuarded(t *testing.T) {
	app := newTestApp(t)

	for app.Stage() != domain.StageGenerate {
		model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRight})
		app = model.(*App)
	}

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(*App)

	assert.Nil(t, cmd)
	assert.Contains(t, app.View(), "run a search first")
}

func TestApp_QuitKey(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 120))
	assert.Equal(t, "ab...", truncateRunes("abcdef", 2))

	got := truncateRunes("治理层对气候相关风险的监督", 4)
	assert.Equal(t, "治理层对...", got)
	assert.True(t, utf8.ValidString(got))
}
