package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coachlens/internal/app/model"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name    string
		from    model.JobStatus
		to      model.JobStatus
		allowed bool
	}{
		{"draft to queued", model.StatusDraft, model.StatusQueued, true},
		{"queued to transcribing", model.StatusQueued, model.StatusTranscribing, true},
		{"queued to analyzing (comparison path)", model.StatusQueued, model.StatusAnalyzing, true},
		{"transcribing to analyzing", model.StatusTranscribing, model.StatusAnalyzing, true},
		{"analyzing to completed", model.StatusAnalyzing, model.StatusCompleted, true},
		{"any stage to failed", model.StatusTranscribing, model.StatusFailed, true},
		{"draft to failed", model.StatusDraft, model.StatusFailed, true},
		{"no skipping to completed", model.StatusQueued, model.StatusCompleted, false},
		{"no backward move", model.StatusAnalyzing, model.StatusTranscribing, false},
		{"completed is terminal", model.StatusCompleted, model.StatusFailed, false},
		{"failed is terminal", model.StatusFailed, model.StatusQueued, false},
		{"draft cannot go straight to transcribing", model.StatusDraft, model.StatusTranscribing, false},
		{"no self transition", model.StatusQueued, model.StatusQueued, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestStartableFrom(t *testing.T) {
	assert.Equal(t, []model.JobStatus{model.StatusQueued}, StartableFrom(model.StatusTranscribing))
	assert.Equal(t, []model.JobStatus{model.StatusQueued}, StartableFrom(model.StatusAnalyzing))
	assert.Equal(t, []model.JobStatus{model.StatusDraft}, StartableFrom(model.StatusQueued))
	assert.Nil(t, StartableFrom(model.StatusCompleted))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, model.StatusCompleted.IsTerminal())
	assert.True(t, model.StatusFailed.IsTerminal())
	assert.False(t, model.StatusDraft.IsTerminal())
	assert.False(t, model.StatusQueued.IsTerminal())
	assert.False(t, model.StatusTranscribing.IsTerminal())
	assert.False(t, model.StatusAnalyzing.IsTerminal())
}
