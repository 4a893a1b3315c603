package driving

import (
	"context"
	"io"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// PipelineService sequences stage invocations against the processing
// service. Each stage owns one invocation slot: a second call while the
// slot is in flight is rejected with domain.ErrStageBusy, while distinct
// stages may run concurrently.
type PipelineService interface {
	// Load parses an uploaded PDF and registers the loaded artifact.
	Load(ctx context.Context, req driven.LoadRequest) (*domain.ChunkResult, error)

	// Chunk splits the selected loaded document.
	Chunk(ctx context.Context, req driven.ChunkRequest) (*domain.ChunkResult, error)

	// Embed embeds the selected document.
	Embed(ctx context.Context, req driven.EmbedRequest) (*domain.EmbedResult, error)

	// Index writes the selected embedding file into a vector store.
	Index(ctx context.Context, req driven.IndexRequest) (*domain.IndexResult, error)

	// Search runs similarity search. A successful call with zero hits
	// returns domain.ErrEmptyResult.
	Search(ctx context.Context, req driven.SearchRequest) ([]domain.SearchResult, error)

	// Generate produces an answer from carried or reloaded context.
	Generate(ctx context.Context, req driven.GenerateRequest) (*domain.GenerateResult, error)

	// Evaluate runs the server-side evaluation path.
	Evaluate(ctx context.Context, req driven.EvaluateRequest) (*domain.EvaluationReport, error)

	// Handoff returns the Search→Generation transfer payload from the
	// last successful search, or nil if none exists.
	Handoff() *domain.GenerationInput

	// State returns a snapshot of one stage's invocation slot.
	State(stage domain.Stage) domain.StageState

	// States returns snapshots for all stages in pipeline order.
	States() []domain.StageState
}

// EvaluationService is the client-side evaluation scorer.
type EvaluationService interface {
	// ParseQuerySet reads the labeled CSV. Rows with missing ground
	// truth are kept and flagged in the diagnostics.
	ParseQuerySet(r io.Reader) ([]domain.EvaluationQuery, []domain.RowDiagnostic, error)

	// Run executes one search per query and scores the retrievals
	// locally, producing a fresh immutable report.
	Run(ctx context.Context, queries []domain.EvaluationQuery, opts EvaluationOptions) (*domain.EvaluationReport, error)
}

// EvaluationOptions configures a client-side evaluation run.
type EvaluationOptions struct {
	CollectionID string
	TopK         int
	Threshold    float64

	// Diagnostics from parsing, carried into the report.
	Diagnostics []domain.RowDiagnostic
}
