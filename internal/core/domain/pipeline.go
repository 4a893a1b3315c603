package domain

// StageStatus is the lifecycle state of one stage invocation slot.
//
// Transitions: idle → in_flight → success or failed. A failed slot is
// re-enterable straight back to in_flight when the user retries; there
// is no automatic retry or backoff.
type StageStatus int

const (
	// StatusIdle means no invocation has run or the slot was reset.
	StatusIdle StageStatus = iota
	// StatusInFlight means a request is pending; the stage's trigger is
	// disabled until it settles.
	StatusInFlight
	// StatusSuccess means the last invocation produced a payload.
	StatusSuccess
	// StatusFailed means the last invocation errored; any previous
	// successful payload is preserved.
	StatusFailed
)

// String returns the lowercase status name.
func (s StageStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in_flight"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a settled outcome.
func (s StageStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// StageState is a read-only snapshot of one stage slot.
type StageState struct {
	Stage  Stage
	Status StageStatus

	// Err is the message of the last failure, empty otherwise.
	Err string
}
