package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBatchStatus(t *testing.T) {
	tests := []struct {
		remote string
		want   BatchStatus
	}{
		{"idle", BatchCreated},
		{"queued", BatchQueued},
		{"running", BatchRunning},
		{"all_succeeded", BatchCompleted},
		{"partially_succeeded", BatchCompleted},
		{"all_failed", BatchFailed},
		{"", BatchRunning},
		{"some_future_state", BatchRunning},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBatchStatus(tt.remote))
		})
	}
}

func TestBatchStatusTerminal(t *testing.T) {
	assert.True(t, BatchCompleted.Terminal())
	assert.True(t, BatchFailed.Terminal())
	assert.False(t, BatchCreated.Terminal())
	assert.False(t, BatchQueued.Terminal())
	assert.False(t, BatchRunning.Terminal())
}
