package services

import (
	"fmt"
	"strings"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// StageGate validates a stage's inputs before any network call is made.
// A decline carries a human-readable reason wrapped around
// domain.ErrValidationDeclined and guarantees zero round trips: the
// check is pure and deterministic, so pre-flight behaviour is testable
// without a backend.
type StageGate struct {
	limits domain.GateLimits
}

// NewStageGate creates a gate with the given parameter bounds.
func NewStageGate(limits domain.GateLimits) *StageGate {
	return &StageGate{limits: limits}
}

func declined(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidationDeclined, reason)
}

// CheckLoad validates a load request.
func (g *StageGate) CheckLoad(req driven.LoadRequest) error {
	if req.Content == nil || req.Filename == "" {
		return declined("select a PDF file to load")
	}
	if req.LoadingMethod == "" {
		return declined("select a loading method")
	}
	if !contains(domain.LoadingMethods(), req.LoadingMethod) {
		return declined(fmt.Sprintf("unknown loading method %q", req.LoadingMethod))
	}
	if req.LoadingMethod == domain.LoadingUnstructured &&
		req.Strategy != "" && !contains(domain.UnstructuredStrategies(), req.Strategy) {
		return declined(fmt.Sprintf("unknown unstructured strategy %q", req.Strategy))
	}
	return nil
}

// CheckChunk validates a chunk request against the selected document.
func (g *StageGate) CheckChunk(req driven.ChunkRequest) error {
	if req.DocID == "" {
		return declined("select a loaded document to chunk")
	}
	if req.ChunkingOption == "" {
		return declined("select a chunking method")
	}
	if !contains(domain.ChunkingMethods(), req.ChunkingOption) {
		return declined(fmt.Sprintf("unknown chunking method %q", req.ChunkingOption))
	}
	if req.ChunkingOption == domain.ChunkFixedSize {
		if req.ChunkSize < g.limits.ChunkSizeMin || req.ChunkSize > g.limits.ChunkSizeMax {
			return declined(fmt.Sprintf("chunk size must be between %d and %d",
				g.limits.ChunkSizeMin, g.limits.ChunkSizeMax))
		}
	}
	return nil
}

// CheckEmbed validates an embed request.
func (g *StageGate) CheckEmbed(req driven.EmbedRequest) error {
	if req.DocumentID == "" {
		return declined("select a document to embed")
	}
	if req.Provider == "" {
		return declined("select an embedding provider")
	}
	if req.Model == "" {
		return declined("select an embedding model")
	}
	return nil
}

// CheckIndex validates an index request.
func (g *StageGate) CheckIndex(req driven.IndexRequest) error {
	if req.FileID == "" {
		return declined("select an embedding file to index")
	}
	if req.VectorDB == "" {
		return declined("select a vector database")
	}
	if modes := domain.IndexModes(req.VectorDB); len(modes) > 0 {
		if req.IndexMode != "" && !contains(modes, req.IndexMode) {
			return declined(fmt.Sprintf("%s does not support index mode %q",
				req.VectorDB, req.IndexMode))
		}
	}
	return nil
}

// CheckSearch validates a search request.
func (g *StageGate) CheckSearch(req driven.SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return declined("enter a search query")
	}
	if req.CollectionID == "" {
		return declined("select a collection")
	}
	if req.TopK < 1 || req.TopK > g.limits.SearchTopKMax {
		return declined(fmt.Sprintf("top_k must be between 1 and %d", g.limits.SearchTopKMax))
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return declined("similarity threshold must be between 0 and 1")
	}
	if req.WordCountThreshold < 0 || req.WordCountThreshold > g.limits.WordCountMax {
		return declined(fmt.Sprintf("word count threshold must be between 0 and %d",
			g.limits.WordCountMax))
	}
	return nil
}

// CheckGenerate validates a generate request. Generation requires a
// carried (or reloaded) search result set; it never re-runs retrieval.
func (g *StageGate) CheckGenerate(req driven.GenerateRequest) error {
	if req.Provider == "" {
		return declined("select a generation provider")
	}
	if req.ModelName == "" {
		return declined("select a generation model")
	}
	if strings.TrimSpace(req.Query) == "" {
		return declined("enter a question")
	}
	if len(req.SearchResults) == 0 {
		return declined("no search results to generate from; run a search first")
	}
	return nil
}

// CheckEvaluate validates a server-side evaluation request.
func (g *StageGate) CheckEvaluate(req driven.EvaluateRequest) error {
	if req.CSV == nil || req.Filename == "" {
		return declined("select a query-set CSV file")
	}
	if req.CollectionID == "" {
		return declined("select a collection")
	}
	if req.TopK < 1 || req.TopK > g.limits.EvaluateTopKMax {
		return declined(fmt.Sprintf("top_k must be between 1 and %d", g.limits.EvaluateTopKMax))
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return declined("similarity threshold must be between 0 and 1")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
