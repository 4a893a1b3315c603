package driven

import (
	"context"
	"io"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
)

// LoadRequest asks the backend to parse an uploaded PDF.
type LoadRequest struct {
	// Filename is the upload name, Content the PDF bytes.
	Filename string
	Content  io.Reader

	// LoadingMethod selects the extraction backend.
	LoadingMethod string

	// Strategy applies to the unstructured loader only.
	Strategy string

	// ChunkingStrategy and ChunkingOptions apply to the unstructured
	// loader only.
	ChunkingStrategy string
	ChunkingOptions  *UnstructuredOptions
}

// UnstructuredOptions tunes the unstructured loader's built-in chunker.
type UnstructuredOptions struct {
	MaxCharacters          int  `json:"maxCharacters"`
	NewAfterNChars         int  `json:"newAfterNChars"`
	CombineTextUnderNChars int  `json:"combineTextUnderNChars"`
	Overlap                int  `json:"overlap"`
	OverlapAll             bool `json:"overlapAll"`
	MultiPageSections      bool `json:"multiPageSections"`
}

// ChunkRequest asks the backend to split a loaded document.
type ChunkRequest struct {
	DocID          string
	ChunkingOption string
	ChunkSize      int
}

// EmbedRequest asks the backend to embed a chunked document.
type EmbedRequest struct {
	DocumentID string
	Provider   string
	Model      string
}

// IndexRequest asks the backend to index an embedding file.
type IndexRequest struct {
	FileID    string
	VectorDB  string
	IndexMode string
}

// SearchRequest runs similarity search against a collection.
type SearchRequest struct {
	Query              string
	CollectionID       string
	TopK               int
	Threshold          float64
	WordCountThreshold int
	SaveResults        bool
}

// SearchResponse carries the hits and, when saving was requested, the
// server-side path the results were written to.
type SearchResponse struct {
	Results       []domain.SearchResult
	SavedFilepath string
}

// SaveSearchRequest persists an already-fetched result set server-side.
type SaveSearchRequest struct {
	Query        string
	CollectionID string
	Results      []domain.SearchResult
}

// SearchResultFile identifies a saved search on the backend.
type SearchResultFile struct {
	ID   string
	Name string
}

// GenerateRequest asks the backend to produce an answer from retrieved
// context.
type GenerateRequest struct {
	Query         string
	Provider      string
	ModelName     string
	SearchResults []domain.SearchResult
	APIKey        string
	ShowReasoning bool
}

// EvaluateRequest runs a server-side evaluation of a labeled CSV.
type EvaluateRequest struct {
	Filename     string
	CSV          io.Reader
	CollectionID string
	TopK         int
	Threshold    float64
}

// DocumentAPI covers listing, detail and lifecycle of loaded and chunked
// artifacts, plus the load and chunk operations that produce them.
type DocumentAPI interface {
	// ListDocuments returns summaries for one artifact kind, or for all
	// kinds when kind is domain.KindAll.
	ListDocuments(ctx context.Context, kind domain.ArtifactKind) ([]domain.Document, error)

	// GetDocument fetches the detail record for one artifact.
	GetDocument(ctx context.Context, name string, kind domain.ArtifactKind) (*domain.ChunkResult, error)

	// DeleteDocument removes one artifact server-side.
	DeleteDocument(ctx context.Context, name string, kind domain.ArtifactKind) error

	// Load parses an uploaded PDF.
	Load(ctx context.Context, req LoadRequest) (*domain.ChunkResult, error)

	// Chunk splits a loaded document.
	Chunk(ctx context.Context, req ChunkRequest) (*domain.ChunkResult, error)
}

// EmbeddingAPI covers the embed stage and its artifact namespace.
type EmbeddingAPI interface {
	Embed(ctx context.Context, req EmbedRequest) (*domain.EmbedResult, error)
	ListEmbedded(ctx context.Context) ([]domain.Document, error)
	GetEmbedded(ctx context.Context, name string) (*domain.EmbedResult, error)
	DeleteEmbedded(ctx context.Context, name string) error
}

// VectorStoreAPI covers provider/collection discovery and the index stage.
type VectorStoreAPI interface {
	ListProviders(ctx context.Context) ([]domain.Provider, error)
	ListCollections(ctx context.Context, provider string) ([]domain.Collection, error)
	GetCollection(ctx context.Context, provider, name string) (*domain.IndexResult, error)
	DeleteCollection(ctx context.Context, provider, name string) error
	Index(ctx context.Context, req IndexRequest) (*domain.IndexResult, error)
}

// SearchAPI covers similarity search and saved result sets.
type SearchAPI interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	SaveSearch(ctx context.Context, req SaveSearchRequest) (string, error)
	ListSearchResults(ctx context.Context) ([]SearchResultFile, error)
	GetSearchResults(ctx context.Context, id string) (*domain.SavedSearch, error)
}

// GenerationAPI covers model discovery and answer generation.
type GenerationAPI interface {
	// ListModels returns provider → model id → display name.
	ListModels(ctx context.Context) (map[string]map[string]string, error)
	Generate(ctx context.Context, req GenerateRequest) (*domain.GenerateResult, error)
}

// EvaluationAPI covers the server-side evaluation path.
type EvaluationAPI interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (*domain.EvaluationReport, error)
}

// Backend is the full REST contract of the processing service.
type Backend interface {
	DocumentAPI
	EmbeddingAPI
	VectorStoreAPI
	SearchAPI
	GenerationAPI
	EvaluationAPI
}
