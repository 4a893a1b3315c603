// Package tui provides the interactive terminal control panel. It
// implements a driving adapter following hexagonal architecture
// principles.
package tui

import (
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the control panel needs.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Registry tracks pipeline artifacts and per-stage selections.
	Registry driving.RegistryService

	// Pipeline runs stage invocations and tracks their slots.
	Pipeline driving.PipelineService

	// Evaluation is the client-side scorer.
	Evaluation driving.EvaluationService

	// History lists and reloads archived evaluation runs.
	History driving.HistoryService

	// Backend exposes catalog lookups not wrapped by a service
	// (providers, collections, generation models).
	Backend driven.Backend
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Registry == nil {
		return ErrMissingRegistryService
	}
	if p.Pipeline == nil {
		return ErrMissingPipelineService
	}
	return nil
}
