package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatePredicates(t *testing.T) {
	tests := []struct {
		state       State
		busy        bool
		hasArtifact bool
	}{
		{StateIdle, false, false},
		{StateGenerating, true, false},
		{StateGenerated, false, true},
		{StateChecking, true, false},
		{StateReady, false, true},
		{StateNeedsUpdate, false, true},
		{StateRepairing, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.busy, tt.state.Busy())
			assert.Equal(t, tt.hasArtifact, tt.state.HasArtifact())
		})
	}
}
