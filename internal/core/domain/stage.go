package domain

// Stage identifies one step of the document pipeline.
type Stage string

const (
	// StageLoad parses an uploaded PDF into page text.
	StageLoad Stage = "load"
	// StageChunk splits a loaded document into chunks.
	StageChunk Stage = "chunk"
	// StageEmbed computes embeddings for a chunked document.
	StageEmbed Stage = "embed"
	// StageIndex writes embeddings into a vector store collection.
	StageIndex Stage = "index"
	// StageSearch runs similarity search against a collection.
	StageSearch Stage = "search"
	// StageGenerate produces an LLM answer from retrieved context.
	StageGenerate Stage = "generate"
	// StageEvaluate scores retrieval quality against a labeled query set.
	StageEvaluate Stage = "evaluate"
)

// Stages lists all pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{
		StageLoad, StageChunk, StageEmbed, StageIndex,
		StageSearch, StageGenerate, StageEvaluate,
	}
}

// ArtifactKind identifies the namespace a document artifact lives in.
// Each mutating stage produces artifacts of exactly one kind.
type ArtifactKind string

const (
	// KindLoaded is the output namespace of the load stage.
	KindLoaded ArtifactKind = "loaded"
	// KindChunked is the output namespace of the chunk stage.
	KindChunked ArtifactKind = "chunked"
	// KindEmbedded is the output namespace of the embed stage.
	KindEmbedded ArtifactKind = "embedded"
	// KindIndexed is the output namespace of the index stage.
	KindIndexed ArtifactKind = "indexed"
	// KindAll selects artifacts across all namespaces in list queries.
	KindAll ArtifactKind = "all"
)

// ArtifactKinds lists the concrete artifact namespaces in pipeline order.
// KindAll is a query convenience, not a real namespace.
func ArtifactKinds() []ArtifactKind {
	return []ArtifactKind{KindLoaded, KindChunked, KindEmbedded, KindIndexed}
}

// Downstream returns the artifact kinds that depend on k, in order.
// A chunked artifact is downstream of the loaded artifact it was cut
// from, and so on along the pipeline.
func (k ArtifactKind) Downstream() []ArtifactKind {
	kinds := ArtifactKinds()
	for i, kind := range kinds {
		if kind == k {
			return kinds[i+1:]
		}
	}
	return nil
}

// Valid reports whether k is a known artifact kind.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindLoaded, KindChunked, KindEmbedded, KindIndexed, KindAll:
		return true
	}
	return false
}
