// Package jobs defines the shared job state graph and the transition rules
// both pipelines enforce. Transitions are monotonic: no backward moves, no
// skipped stages on the success path, nothing out of a terminal state.
package jobs

import "coachlens/internal/app/model"

// transitions holds the legal forward edges of the state graph.
var transitions = map[model.JobStatus][]model.JobStatus{
	model.StatusDraft:        {model.StatusQueued, model.StatusFailed},
	model.StatusQueued:       {model.StatusTranscribing, model.StatusAnalyzing, model.StatusFailed},
	model.StatusTranscribing: {model.StatusAnalyzing, model.StatusFailed},
	model.StatusAnalyzing:    {model.StatusCompleted, model.StatusFailed},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to model.JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StartableFrom returns the statuses a job may hold when it is picked up for
// execution into the given first stage. The transition out of these statuses
// is the exclusivity gate: a second attempt to start the same job observes a
// different status and aborts.
func StartableFrom(firstStage model.JobStatus) []model.JobStatus {
	switch firstStage {
	case model.StatusTranscribing, model.StatusAnalyzing:
		return []model.JobStatus{model.StatusQueued}
	case model.StatusQueued:
		return []model.JobStatus{model.StatusDraft}
	}
	return nil
}
