package domain

// Static option catalogs for the pipeline stages. These mirror what the
// processing service accepts; the backend remains the source of truth
// for anything it reports dynamically (providers, generation models).

// Loading methods for PDF text extraction.
const (
	LoadingPyMuPDF      = "pymupdf"
	LoadingPyPDF        = "pypdf"
	LoadingUnstructured = "unstructured"
)

// LoadingMethods lists the supported extraction methods.
func LoadingMethods() []string {
	return []string{LoadingPyMuPDF, LoadingPyPDF, LoadingUnstructured}
}

// Unstructured extraction strategies.
const (
	StrategyFast    = "fast"
	StrategyHiRes   = "hi_res"
	StrategyOCROnly = "ocr_only"
)

// UnstructuredStrategies lists strategies for the unstructured loader.
func UnstructuredStrategies() []string {
	return []string{StrategyFast, StrategyHiRes, StrategyOCROnly}
}

// Chunking methods for the chunk stage.
const (
	ChunkByPages      = "by_pages"
	ChunkFixedSize    = "fixed_size"
	ChunkByParagraphs = "by_paragraphs"
	ChunkBySentences  = "by_sentences"
)

// ChunkingMethods lists the supported splitting methods.
func ChunkingMethods() []string {
	return []string{ChunkByPages, ChunkFixedSize, ChunkByParagraphs, ChunkBySentences}
}

// EmbeddingCatalog maps embedding providers to their model options.
// The first model per provider is the default.
func EmbeddingCatalog() map[string][]string {
	return map[string][]string{
		"openai": {
			"text-embedding-3-large",
			"text-embedding-3-small",
		},
		"bedrock": {
			"cohere.embed-english-v3",
			"cohere.embed-multilingual-v3",
		},
		"huggingface": {
			"sentence-transformers/all-mpnet-base-v2",
			"all-MiniLM-L6-v2",
			"google-bert/bert-base-uncased",
		},
	}
}

// DefaultEmbeddingModel returns the default model for a provider, or ""
// if the provider is unknown.
func DefaultEmbeddingModel(provider string) string {
	models := EmbeddingCatalog()[provider]
	if len(models) == 0 {
		return ""
	}
	return models[0]
}

// VectorDBCatalog maps vector store providers to their index modes.
// The first mode per database is the default.
func VectorDBCatalog() map[string][]string {
	return map[string][]string{
		"milvus":   {"flat", "ivf_flat", "ivf_sq8", "hnsw"},
		"pinecone": {"standard", "hybrid"},
		"qdrant":   {"hnsw", "custom"},
		"weaviate": {"hnsw", "flat"},
		"chroma":   {"hnsw", "standard"},
		"faiss":    {"flat", "ivf", "hnsw"},
	}
}

// IndexModes returns the index modes a vector database supports.
func IndexModes(vectorDB string) []string {
	return VectorDBCatalog()[vectorDB]
}

// DefaultIndexMode returns the default index mode for a vector database,
// or "" if the database is unknown.
func DefaultIndexMode(vectorDB string) string {
	modes := IndexModes(vectorDB)
	if len(modes) == 0 {
		return ""
	}
	return modes[0]
}
