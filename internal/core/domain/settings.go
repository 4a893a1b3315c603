package domain

import "time"

// GateLimits bounds the numeric parameters the stage gate enforces.
// Values are configuration with documented defaults, not inline
// literals scattered through validation code.
type GateLimits struct {
	// ChunkSizeMin and ChunkSizeMax bound fixed-size chunking.
	ChunkSizeMin int
	ChunkSizeMax int

	// SearchTopKMax bounds top_k for interactive search.
	SearchTopKMax int

	// EvaluateTopKMax bounds top_k for evaluation runs, which look
	// deeper into the ranking than interactive search.
	EvaluateTopKMax int

	// WordCountMax bounds the minimum-word-count filter.
	WordCountMax int
}

// DefaultGateLimits returns the documented parameter bounds.
func DefaultGateLimits() GateLimits {
	return GateLimits{
		ChunkSizeMin:    100,
		ChunkSizeMax:    5000,
		SearchTopKMax:   10,
		EvaluateTopKMax: 20,
		WordCountMax:    500,
	}
}

// Settings is the resolved client configuration.
type Settings struct {
	// Environment selects which base URL is active
	// (development, production, test).
	Environment string

	// BaseURL is the processing service endpoint for the active
	// environment.
	BaseURL string

	// ListTimeout is the bounded wait for document-listing calls.
	// Expiry is reported as a timeout, not a transport failure.
	ListTimeout time.Duration

	// RequestsPerSecond throttles outgoing backend calls.
	RequestsPerSecond float64

	// Limits are the stage-gate parameter bounds.
	Limits GateLimits

	// Bands control compliance labeling in evaluation reports.
	Bands ComplianceBands
}

// DefaultSettings returns the development-environment defaults.
func DefaultSettings() Settings {
	return Settings{
		Environment:       "development",
		BaseURL:           "http://localhost:8001",
		ListTimeout:       5 * time.Second,
		RequestsPerSecond: 10,
		Limits:            DefaultGateLimits(),
		Bands:             DefaultComplianceBands(),
	}
}
