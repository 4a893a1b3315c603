package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortsValidate_AllSet(t *testing.T) {
	ports := &Ports{
		Registry: newStubRegistry(),
		Pipeline: &stubPipeline{},
	}
	assert.NoError(t, ports.Validate())
}

func TestPortsValidate_MissingRegistry(t *testing.T) {
	ports := &Ports{Pipeline: &stubPipeline{}}
	assert.ErrorIs(t, ports.Validate(), ErrMissingRegistryService)
}

func TestPortsValidate_MissingPipeline(t *testing.T) {
	ports := &Ports{Registry: newStubRegistry()}
	assert.ErrorIs(t, ports.Validate(), ErrMissingPipelineService)
}
