// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - Backend (DocumentAPI, EmbeddingAPI, VectorStoreAPI, SearchAPI,
//     GenerationAPI, EvaluationAPI): the REST contract of the external
//     processing service
//   - HistoryStore: local archive of evaluation runs
//   - ConfigStore: client configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
