package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

// Ensure PipelineOrchestrator implements the interface.
var _ driving.PipelineService = (*PipelineOrchestrator)(nil)

// stageSlot is the invocation state for one stage. A failed invocation
// keeps the previous successful payload so the UI never loses data on a
// retryable error.
type stageSlot struct {
	status  domain.StageStatus
	payload any
	err     error
}

// PipelineOrchestrator sequences stage calls against the processing
// service. Each stage owns one slot; while a slot is in flight, further
// invocations of that stage are rejected, which also makes per-stage
// response ordering trivial. Distinct stages run independently.
type PipelineOrchestrator struct {
	backend  driven.Backend
	registry *ArtifactRegistry
	gate     *StageGate

	mu      sync.Mutex
	slots   map[domain.Stage]*stageSlot
	handoff *domain.GenerationInput
}

// NewPipelineOrchestrator creates an orchestrator over the given
// backend, registry and gate.
func NewPipelineOrchestrator(
	backend driven.Backend, registry *ArtifactRegistry, gate *StageGate,
) *PipelineOrchestrator {
	return &PipelineOrchestrator{
		backend:  backend,
		registry: registry,
		gate:     gate,
		slots:    make(map[domain.Stage]*stageSlot),
	}
}

// begin moves a stage slot from idle (or a settled state) to in_flight.
// The busy check and the gate check happen under one lock so a declined
// or duplicate invocation leaves the slot untouched and makes no call.
func (o *PipelineOrchestrator) begin(stage domain.Stage, gateCheck func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	slot := o.slotLocked(stage)
	if slot.status == domain.StatusInFlight {
		return fmt.Errorf("%w: %s operation already in flight", domain.ErrStageBusy, stage)
	}
	if gateCheck != nil {
		if err := gateCheck(); err != nil {
			logger.Debug("pipeline: %s declined: %v", stage, err)
			return err
		}
	}
	slot.status = domain.StatusInFlight
	logger.Section(fmt.Sprintf("Stage %s", stage))
	return nil
}

func (o *PipelineOrchestrator) slotLocked(stage domain.Stage) *stageSlot {
	slot, ok := o.slots[stage]
	if !ok {
		slot = &stageSlot{}
		o.slots[stage] = slot
	}
	return slot
}

// succeed settles a slot with a fresh payload.
func (o *PipelineOrchestrator) succeed(stage domain.Stage, payload any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	slot := o.slotLocked(stage)
	slot.status = domain.StatusSuccess
	slot.payload = payload
	slot.err = nil
	logger.Debug("pipeline: %s succeeded", stage)
}

// fail settles a slot with a classified error. The previous payload is
// preserved; only the error and status change.
func (o *PipelineOrchestrator) fail(stage domain.Stage, err error) error {
	classified := classify(err)

	o.mu.Lock()
	defer o.mu.Unlock()
	slot := o.slotLocked(stage)
	slot.status = domain.StatusFailed
	slot.err = classified
	logger.Warn("pipeline: %s failed: %v", stage, classified)
	return classified
}

// classify folds an arbitrary call error into the surfaced taxonomy.
// Adapter errors usually arrive pre-classified; anything unrecognised
// counts as transport failure.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidationDeclined),
		errors.Is(err, domain.ErrTimeout),
		errors.Is(err, domain.ErrTransport),
		errors.Is(err, domain.ErrEmptyResult):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
}

// refresh re-lists and re-hydrates one artifact kind after a mutating
// operation. Refresh failures are logged, not surfaced: the stage
// payload is already in hand and the cache catches up on the next list.
func (o *PipelineOrchestrator) refresh(ctx context.Context, kind domain.ArtifactKind) {
	docs, err := o.registry.List(ctx, kind)
	if err != nil {
		logger.Warn("pipeline: refreshing %s after mutation: %v", kind, err)
		return
	}
	names := make([]string, len(docs))
	for i := range docs {
		names[i] = docs[i].Name
	}
	o.registry.Hydrate(ctx, kind, names)
}

// Load parses an uploaded PDF and registers the loaded artifact.
func (o *PipelineOrchestrator) Load(
	ctx context.Context, req driven.LoadRequest,
) (*domain.ChunkResult, error) {
	if err := o.begin(domain.StageLoad, func() error { return o.gate.CheckLoad(req) }); err != nil {
		return nil, err
	}

	result, err := o.backend.Load(ctx, req)
	if err != nil {
		return nil, o.fail(domain.StageLoad, err)
	}

	o.succeed(domain.StageLoad, result)
	// Refresh first: Register after the re-list guarantees the fresh
	// artifact is visible even when the backend listing lags.
	o.refresh(ctx, domain.KindLoaded)
	o.registry.Register(domain.KindLoaded, result.Summary(domain.KindLoaded))
	return result, nil
}

// Chunk splits a loaded document into chunks. The returned payload is
// stored for immediate preview; the chunked listing refreshes behind it.
func (o *PipelineOrchestrator) Chunk(
	ctx context.Context, req driven.ChunkRequest,
) (*domain.ChunkResult, error) {
	if err := o.begin(domain.StageChunk, func() error { return o.gate.CheckChunk(req) }); err != nil {
		return nil, err
	}

	result, err := o.backend.Chunk(ctx, req)
	if err != nil {
		return nil, o.fail(domain.StageChunk, err)
	}

	o.succeed(domain.StageChunk, result)
	o.refresh(ctx, domain.KindChunked)
	o.registry.Register(domain.KindChunked, result.Summary(domain.KindChunked))
	return result, nil
}

// Embed computes embeddings for the selected document.
func (o *PipelineOrchestrator) Embed(
	ctx context.Context, req driven.EmbedRequest,
) (*domain.EmbedResult, error) {
	if err := o.begin(domain.StageEmbed, func() error { return o.gate.CheckEmbed(req) }); err != nil {
		return nil, err
	}

	result, err := o.backend.Embed(ctx, req)
	if err != nil {
		return nil, o.fail(domain.StageEmbed, err)
	}

	o.succeed(domain.StageEmbed, result)
	o.refresh(ctx, domain.KindEmbedded)
	doc := embeddedDetail(result)
	doc.Name = req.DocumentID
	o.registry.Register(domain.KindEmbedded, *doc)
	return result, nil
}

// Index writes an embedding file into a vector store collection. The
// indexed view is registry-local: the backend exposes collections, not
// an indexed-document listing.
func (o *PipelineOrchestrator) Index(
	ctx context.Context, req driven.IndexRequest,
) (*domain.IndexResult, error) {
	if err := o.begin(domain.StageIndex, func() error { return o.gate.CheckIndex(req) }); err != nil {
		return nil, err
	}

	result, err := o.backend.Index(ctx, req)
	if err != nil {
		return nil, o.fail(domain.StageIndex, err)
	}

	o.succeed(domain.StageIndex, result)
	o.registry.Register(domain.KindIndexed, domain.Document{
		Name:           req.FileID,
		Kind:           domain.KindIndexed,
		CollectionName: result.CollectionName,
		VectorDB:       result.Database,
		IndexMode:      result.IndexMode,
		TotalVectors:   result.TotalVectors,
		Hydrated:       true,
	})
	return result, nil
}

// Search runs similarity search. A successful call with zero hits
// settles the slot as success but returns domain.ErrEmptyResult so the
// caller can render the distinct "no matches" category; the handoff is
// only armed by a non-empty result set.
func (o *PipelineOrchestrator) Search(
	ctx context.Context, req driven.SearchRequest,
) ([]domain.SearchResult, error) {
	if err := o.begin(domain.StageSearch, func() error { return o.gate.CheckSearch(req) }); err != nil {
		return nil, err
	}

	resp, err := o.backend.Search(ctx, req)
	if err != nil {
		return nil, o.fail(domain.StageSearch, err)
	}

	o.succeed(domain.StageSearch, resp)
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: no matches above threshold %.2f",
			domain.ErrEmptyResult, req.Threshold)
	}

	o.mu.Lock()
	o.handoff = &domain.GenerationInput{Query: req.Query, Results: resp.Results}
	o.mu.Unlock()

	return resp.Results, nil
}

// Generate produces an answer from retrieved context.
func (o *PipelineOrchestrator) Generate(
	ctx context.Context, req driven.GenerateRequest,
) (*domain.GenerateResult, error) {
	if err := o.begin(domain.StageGenerate, func() error { return o.gate.CheckGenerate(req) }); err != nil {
		return nil, err
	}

	result, err := o.backend.Generate(ctx, req)
	if err != nil {
		return nil, o.fail(domain.StageGenerate, err)
	}

	o.succeed(domain.StageGenerate, result)
	return result, nil
}

// Evaluate runs the server-side evaluation path.
func (o *PipelineOrchestrator) Evaluate(
	ctx context.Context, req driven.EvaluateRequest,
) (*domain.EvaluationReport, error) {
	if err := o.begin(domain.StageEvaluate, func() error { return o.gate.CheckEvaluate(req) }); err != nil {
		return nil, err
	}

	report, err := o.backend.Evaluate(ctx, req)
	if err != nil {
		return nil, o.fail(domain.StageEvaluate, err)
	}

	o.succeed(domain.StageEvaluate, report)
	return report, nil
}

// Handoff returns the Search→Generation transfer payload from the last
// successful non-empty search, or nil.
func (o *PipelineOrchestrator) Handoff() *domain.GenerationInput {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.handoff == nil {
		return nil
	}
	out := &domain.GenerationInput{
		Query:   o.handoff.Query,
		Results: make([]domain.SearchResult, len(o.handoff.Results)),
	}
	copy(out.Results, o.handoff.Results)
	return out
}

// State returns a snapshot of one stage's slot.
func (o *PipelineOrchestrator) State(stage domain.Stage) domain.StageState {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := domain.StageState{Stage: stage, Status: domain.StatusIdle}
	if slot, ok := o.slots[stage]; ok {
		state.Status = slot.status
		if slot.err != nil {
			state.Err = slot.err.Error()
		}
	}
	return state
}

// States returns snapshots for all stages in pipeline order.
func (o *PipelineOrchestrator) States() []domain.StageState {
	stages := domain.Stages()
	out := make([]domain.StageState, len(stages))
	for i, stage := range stages {
		out[i] = o.State(stage)
	}
	return out
}

// Payload returns the last successful payload for a stage, or nil.
// The concrete type depends on the stage.
func (o *PipelineOrchestrator) Payload(stage domain.Stage) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	if slot, ok := o.slots[stage]; ok {
		return slot.payload
	}
	return nil
}
