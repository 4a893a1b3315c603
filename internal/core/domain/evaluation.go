package domain

// ComplianceStatus is the categorical label derived from a row's find score.
type ComplianceStatus string

const (
	// ComplianceFullyFound means every expected page was retrieved.
	ComplianceFullyFound ComplianceStatus = "fully_found"
	// CompliancePartiallyFound means some expected pages were retrieved.
	CompliancePartiallyFound ComplianceStatus = "partially_found"
	// ComplianceNotFound means no expected page was retrieved.
	ComplianceNotFound ComplianceStatus = "not_found"
)

// ComplianceBands maps a find score to a compliance status. The
// boundaries are configuration, not constants: callers tune them per
// audit regime.
type ComplianceBands struct {
	// FullyFoundAt is the minimum find score for fully_found.
	FullyFoundAt float64

	// PartiallyFoundAbove is the exclusive lower bound for
	// partially_found; at or below it the row is not_found.
	PartiallyFoundAbove float64
}

// DefaultComplianceBands returns the documented default banding:
// fully found at a perfect recall, partially found for any non-zero
// recall, not found otherwise.
func DefaultComplianceBands() ComplianceBands {
	return ComplianceBands{
		FullyFoundAt:        1.0,
		PartiallyFoundAbove: 0.0,
	}
}

// Classify returns the compliance status for a find score.
func (b ComplianceBands) Classify(scoreFind float64) ComplianceStatus {
	switch {
	case scoreFind >= b.FullyFoundAt:
		return ComplianceFullyFound
	case scoreFind > b.PartiallyFoundAbove:
		return CompliancePartiallyFound
	default:
		return ComplianceNotFound
	}
}

// EvaluationQuery is one labeled row of the input query set.
type EvaluationQuery struct {
	// ID is the requirement identifier from the CSV.
	ID string

	// Requirement is the disclosure requirement text.
	Requirement string

	// CombinedText is the full query text sent to search
	// (id + requirement + corresponding text).
	CombinedText string

	// ExpectedPages is the ground-truth page set.
	ExpectedPages []int

	// LabelledStatus is the compliance label carried in the CSV, if any.
	LabelledStatus string
}

// EvaluationRow is the scored outcome for one query.
type EvaluationRow struct {
	ID            string
	Requirement   string
	ExpectedPages []int
	FoundPages    []int

	// ScoreHit is retrieval precision: of the pages retrieved, the
	// fraction that were expected. Always in [0,1].
	ScoreHit float64

	// ScoreFind is retrieval recall: of the pages expected, the
	// fraction that were retrieved. Always in [0,1].
	ScoreFind float64

	// Compliance is the banded label derived from ScoreFind.
	Compliance ComplianceStatus
}

// AverageScores holds the arithmetic means over all rows, zero-scored
// rows included: a query that retrieved nothing is a real failure the
// aggregate must reflect.
type AverageScores struct {
	ScoreHit  float64
	ScoreFind float64
}

// RowDiagnostic flags a malformed input row. Diagnostics are parallel to
// the scored rows so callers can tell "retrieval failed" apart from
// "ground truth missing".
type RowDiagnostic struct {
	RowID  string
	Reason string
}

// EvaluationReport is the self-contained outcome of one evaluation run.
// It is never mutated after construction, only replaced.
type EvaluationReport struct {
	RunID        string
	CollectionID string
	Rows         []EvaluationRow
	Averages     AverageScores
	TotalQueries int
	Diagnostics  []RowDiagnostic
}

// ScoreRetrieval computes the hit (precision) and find (recall) scores
// for one query. Both comparisons are over page sets, so duplicate page
// numbers in either input do not distort the ratios. Empty denominators
// yield 0 by convention rather than an error.
func ScoreRetrieval(expected, found []int) (scoreHit, scoreFind float64) {
	expectedSet := pageSet(expected)
	foundSet := pageSet(found)

	overlap := 0
	for page := range foundSet {
		if expectedSet[page] {
			overlap++
		}
	}

	if len(foundSet) > 0 {
		scoreHit = float64(overlap) / float64(len(foundSet))
	}
	if len(expectedSet) > 0 {
		scoreFind = float64(overlap) / float64(len(expectedSet))
	}
	return scoreHit, scoreFind
}

func pageSet(pages []int) map[int]bool {
	set := make(map[int]bool, len(pages))
	for _, p := range pages {
		set[p] = true
	}
	return set
}
