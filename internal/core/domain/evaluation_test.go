package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRetrieval_PartialOverlap(t *testing.T) {
	hit, find := ScoreRetrieval([]int{3, 5, 7}, []int{5, 7, 9})

	assert.InDelta(t, 2.0/3.0, hit, 1e-9)
	assert.InDelta(t, 2.0/3.0, find, 1e-9)
}

func TestScoreRetrieval_EmptyFound(t *testing.T) {
	hit, find := ScoreRetrieval([]int{2}, nil)

	assert.Zero(t, hit)
	assert.Zero(t, find)
}

func TestScoreRetrieval_EmptyExpected(t *testing.T) {
	hit, find := ScoreRetrieval(nil, []int{1, 2})

	assert.Zero(t, hit)
	assert.Zero(t, find)
}

func TestScoreRetrieval_ExactMatch(t *testing.T) {
	hit, find := ScoreRetrieval([]int{1, 2, 3}, []int{3, 2, 1})

	assert.Equal(t, 1.0, hit)
	assert.Equal(t, 1.0, find)
}

func TestScoreRetrieval_DuplicatesDoNotInflate(t *testing.T) {
	// Retrieval returning the same correct page three times is still one
	// distinct page against one expected page.
	hit, find := ScoreRetrieval([]int{4}, []int{4, 4, 4})

	assert.Equal(t, 1.0, hit)
	assert.Equal(t, 1.0, find)
}

func TestScoreRetrieval_Bounds(t *testing.T) {
	cases := []struct {
		name     string
		expected []int
		found    []int
	}{
		{"disjoint", []int{1, 2}, []int{3, 4}},
		{"subset", []int{1, 2, 3, 4}, []int{2, 3}},
		{"superset", []int{2}, []int{1, 2, 3, 4, 5}},
		{"both empty", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hit, find := ScoreRetrieval(tc.expected, tc.found)
			assert.GreaterOrEqual(t, hit, 0.0)
			assert.LessOrEqual(t, hit, 1.0)
			assert.GreaterOrEqual(t, find, 0.0)
			assert.LessOrEqual(t, find, 1.0)
		})
	}
}

func TestComplianceBands_Classify(t *testing.T) {
	bands := DefaultComplianceBands()

	assert.Equal(t, ComplianceFullyFound, bands.Classify(1.0))
	assert.Equal(t, CompliancePartiallyFound, bands.Classify(0.5))
	assert.Equal(t, CompliancePartiallyFound, bands.Classify(0.01))
	assert.Equal(t, ComplianceNotFound, bands.Classify(0.0))
}

func TestComplianceBands_TunableBoundaries(t *testing.T) {
	// A stricter regime: anything under 0.8 recall is not compliant.
	bands := ComplianceBands{FullyFoundAt: 0.8, PartiallyFoundAbove: 0.5}

	assert.Equal(t, ComplianceFullyFound, bands.Classify(0.8))
	assert.Equal(t, CompliancePartiallyFound, bands.Classify(0.6))
	assert.Equal(t, ComplianceNotFound, bands.Classify(0.5))
}
