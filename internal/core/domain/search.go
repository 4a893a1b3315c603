package domain

// ResultMetadata locates a search hit within its source document.
type ResultMetadata struct {
	// Source is the name of the document the hit came from.
	Source string

	// Page is the page number of the matched chunk.
	Page int

	// Chunk is the chunk identifier within the document.
	Chunk int
}

// SearchResult is a single similarity-search hit. Results are ephemeral:
// they live in memory for the current query unless explicitly saved.
type SearchResult struct {
	// Score is the similarity score in [0,1].
	Score float64

	// Text is the matched chunk content.
	Text string

	// Metadata locates the hit.
	Metadata ResultMetadata
}

// Provider is a vector store backend known to the processing service.
type Provider struct {
	ID   string
	Name string
}

// Collection is a named partition within a vector store.
type Collection struct {
	ID    string
	Name  string
	Count int
}

// SavedSearch is a persisted query with its result set, reloadable as
// generation input.
type SavedSearch struct {
	ID           string
	Name         string
	Query        string
	CollectionID string
	Results      []SearchResult
}

// GenerationInput is the typed Search→Generation handoff payload. It
// replaces carrying state implicitly across views: a completed search's
// query and results travel to the generation stage as one value.
type GenerationInput struct {
	Query   string
	Results []SearchResult
}

// GenerateResult is the payload of a successful generation call.
type GenerateResult struct {
	Response      string
	SavedFilepath string
}
