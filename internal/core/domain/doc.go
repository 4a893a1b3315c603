// Package domain defines the core entities of the pipeline audit console.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Stage / ArtifactKind: the pipeline steps and their output namespaces
//   - Document, Chunk: client-side views of server-held artifacts
//   - SearchResult, GenerationInput: retrieval output and its handoff
//   - EvaluationQuery, EvaluationRow, EvaluationReport: scoring types
//   - StageStatus: the per-stage invocation state machine
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
