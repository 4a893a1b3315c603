package domain

import "time"

// Document is the client-side view of a pipeline artifact, keyed by name
// within its artifact kind. Listing returns sparse summaries; hydration
// merges detail fields in. Which fields carry data depends on the kind.
type Document struct {
	// Name uniquely identifies the document within its kind.
	Name string

	// Kind is the artifact namespace this document belongs to.
	Kind ArtifactKind

	// TotalPages is the page count of the source PDF.
	TotalPages int

	// TotalChunks is the number of chunks (chunked and later kinds).
	TotalChunks int

	// LoadingMethod records how the PDF text was extracted.
	LoadingMethod string

	// ChunkingMethod records how the document was split.
	ChunkingMethod string

	// Timestamp is when the artifact was produced.
	Timestamp time.Time

	// EmbeddingProvider and EmbeddingModel describe the embedding run
	// (embedded kind only).
	EmbeddingProvider string
	EmbeddingModel    string

	// EmbeddingTimestamp is when the embeddings were computed.
	EmbeddingTimestamp time.Time

	// VectorDimension is the embedding width (embedded kind only).
	VectorDimension int

	// CollectionName, VectorDB, IndexMode and TotalVectors describe the
	// indexed artifact (indexed kind only).
	CollectionName string
	VectorDB       string
	IndexMode      string
	TotalVectors   int

	// Hydrated marks that detail fields were merged into this summary.
	Hydrated bool
}

// Merge copies detail fields from d into the receiver without touching
// identity. Zero values in the detail do not clobber known fields, so a
// sparse detail response degrades to a no-op.
func (doc *Document) Merge(d *Document) {
	if d == nil {
		return
	}
	if d.TotalPages > 0 {
		doc.TotalPages = d.TotalPages
	}
	if d.TotalChunks > 0 {
		doc.TotalChunks = d.TotalChunks
	}
	if d.LoadingMethod != "" {
		doc.LoadingMethod = d.LoadingMethod
	}
	if d.ChunkingMethod != "" {
		doc.ChunkingMethod = d.ChunkingMethod
	}
	if !d.Timestamp.IsZero() {
		doc.Timestamp = d.Timestamp
	}
	if d.EmbeddingProvider != "" {
		doc.EmbeddingProvider = d.EmbeddingProvider
	}
	if d.EmbeddingModel != "" {
		doc.EmbeddingModel = d.EmbeddingModel
	}
	if !d.EmbeddingTimestamp.IsZero() {
		doc.EmbeddingTimestamp = d.EmbeddingTimestamp
	}
	if d.VectorDimension > 0 {
		doc.VectorDimension = d.VectorDimension
	}
	if d.CollectionName != "" {
		doc.CollectionName = d.CollectionName
	}
	if d.VectorDB != "" {
		doc.VectorDB = d.VectorDB
	}
	if d.IndexMode != "" {
		doc.IndexMode = d.IndexMode
	}
	if d.TotalVectors > 0 {
		doc.TotalVectors = d.TotalVectors
	}
	doc.Hydrated = true
}

// Chunk is one searchable unit cut from a document. Chunks are created
// atomically as part of a load or chunk response and are immutable; they
// disappear only when the owning document is deleted.
type Chunk struct {
	// ID is the order-significant chunk identifier within the document.
	ID int

	// PageRange is the page span the chunk covers, e.g. "3-4".
	PageRange string

	// PageNumber is the primary page for single-page chunks.
	PageNumber int

	// WordCount is the number of words in Content.
	WordCount int

	// Content is the chunk text.
	Content string
}

// ChunkResult is the payload returned by the load and chunk stages:
// document metadata plus the full ordered chunk sequence for preview.
type ChunkResult struct {
	Filename       string
	TotalPages     int
	TotalChunks    int
	LoadingMethod  string
	ChunkingMethod string
	Timestamp      time.Time
	Chunks         []Chunk
}

// Summary projects the result metadata onto a Document of the given kind.
func (r *ChunkResult) Summary(kind ArtifactKind) Document {
	return Document{
		Name:           r.Filename,
		Kind:           kind,
		TotalPages:     r.TotalPages,
		TotalChunks:    r.TotalChunks,
		LoadingMethod:  r.LoadingMethod,
		ChunkingMethod: r.ChunkingMethod,
		Timestamp:      r.Timestamp,
		Hydrated:       true,
	}
}

// Embedding is a single embedded chunk as returned by the embed stage.
// The vector itself stays server-side; the client only sees metadata.
type Embedding struct {
	ChunkID            int
	TotalChunks        int
	DocumentName       string
	PageNumber         int
	PageRange          string
	Content            string
	EmbeddingModel     string
	EmbeddingProvider  string
	VectorDimension    int
	EmbeddingTimestamp time.Time
}

// EmbedResult is the payload of a successful embed call.
type EmbedResult struct {
	Embeddings []Embedding
	Filepath   string
}

// IndexResult summarises a completed indexing run or a collection display.
type IndexResult struct {
	Database       string
	CollectionName string
	IndexMode      string
	TotalVectors   int
	IndexSize      int
	ProcessingTime float64
}
