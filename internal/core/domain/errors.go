package domain

import "errors"

// Failure taxonomy for pipeline operations. Every surfaced failure maps
// to exactly one of these categories; classification is by errors.Is.
var (
	// ErrValidationDeclined indicates a local pre-flight rejection by the
	// stage gate. No network call was made.
	ErrValidationDeclined = errors.New("validation declined")

	// ErrTransport indicates a network failure or a non-2xx response.
	ErrTransport = errors.New("transport error")

	// ErrTimeout indicates a bounded wait expired on a listing call.
	// Distinct from ErrTransport: the backend may simply be slow.
	ErrTimeout = errors.New("request timed out")

	// ErrEmptyResult indicates a call succeeded but returned no usable
	// artifact, e.g. a search with no matches above the threshold.
	ErrEmptyResult = errors.New("empty result")

	// ErrPartialHydration indicates a per-item detail fetch failed during
	// a best-effort batch merge. The item stays listed with its summary
	// fields; the failure is recorded, never escalated.
	ErrPartialHydration = errors.New("partial hydration failure")

	// ErrStageBusy indicates a stage already has an in-flight invocation.
	ErrStageBusy = errors.New("stage busy")

	// ErrNotFound indicates a requested artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed input data, e.g. an unreadable
	// query-set CSV.
	ErrInvalidInput = errors.New("invalid input")
)
