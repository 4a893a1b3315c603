package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
)

func TestDefaultStyles_UsesDefaultTheme(t *testing.T) {
	s := DefaultStyles()
	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestNewStyles_NilThemeFallsBack(t *testing.T) {
	s := NewStyles(nil)
	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme().Error, s.Theme().Error)
}

func TestStageStatus_Mapping(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success, s.StageStatus(domain.StatusSuccess))
	assert.Equal(t, s.Error, s.StageStatus(domain.StatusFailed))
	assert.Equal(t, s.Warning, s.StageStatus(domain.StatusInFlight))
	assert.Equal(t, s.Muted, s.StageStatus(domain.StatusIdle))
}
