package model

// JobStatus tracks a background job (evaluation or comparison) through its
// fixed state graph. Completed and failed are terminal.
type JobStatus string

const (
	StatusDraft        JobStatus = "draft"
	StatusQueued       JobStatus = "queued"
	StatusTranscribing JobStatus = "transcribing"
	StatusAnalyzing    JobStatus = "analyzing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are permitted.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobKind distinguishes the two pipeline families sharing the state graph.
type JobKind string

const (
	KindEvaluation JobKind = "evaluation"
	KindComparison JobKind = "comparison"
)
