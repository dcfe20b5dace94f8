package repository

import (
	"context"

	"coachlens/internal/app/model"
)

// ComparisonFilter narrows and pages a comparison listing. Zero-value fields
// do not filter; Page is 1-based.
type ComparisonFilter struct {
	Type     model.ComparisonType
	Status   model.JobStatus
	Page     int
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePage clamps paging inputs: page defaults to 1, page size to 20,
// capped at 100.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// JobStore is the durable persistence contract for pipeline jobs and their
// owned records. Status writes are atomic with respect to the status column:
// Transition* and Fail* compare-and-set against the current status so two
// workers can never both win the same transition.
type JobStore interface {
	Close() error

	SaveVideo(ctx context.Context, v *model.Video) error
	GetVideo(ctx context.Context, id string) (*model.Video, error)
	// DeleteVideo removes a video and everything derived from it: its
	// transcripts and its evaluations.
	DeleteVideo(ctx context.Context, id string) error

	SaveTranscript(ctx context.Context, t *model.Transcript) error
	GetTranscript(ctx context.Context, id string) (*model.Transcript, error)

	CreateEvaluation(ctx context.Context, e *model.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error)
	GetEvaluations(ctx context.Context, ids []string) ([]model.Evaluation, error)
	ListEvaluationsByInstructor(ctx context.Context, instructorID string) ([]model.Evaluation, error)
	// UpdateEvaluation persists stage outputs (transcript link, findings,
	// metrics, report). It never touches the status column.
	UpdateEvaluation(ctx context.Context, e *model.Evaluation) error
	// TransitionEvaluation moves the status from one of the expected
	// statuses to the target. Returns *jobs.ConflictError when the current
	// status is not among from.
	TransitionEvaluation(ctx context.Context, id string, from []model.JobStatus, to model.JobStatus) error
	// FailEvaluation terminally fails the job with a reason. No-op when the
	// job already failed; conflict when it already completed.
	FailEvaluation(ctx context.Context, id string, reason string) error

	CreateComparison(ctx context.Context, c *model.Comparison) error
	GetComparison(ctx context.Context, id string) (*model.Comparison, error)
	// ListComparisons returns one page of comparisons, newest first, plus
	// the total count matching the filter.
	ListComparisons(ctx context.Context, filter ComparisonFilter) ([]model.Comparison, int, error)
	UpdateComparison(ctx context.Context, c *model.Comparison) error
	// DeleteComparison removes a comparison. The linked evaluations are
	// never touched.
	DeleteComparison(ctx context.Context, id string) error
	TransitionComparison(ctx context.Context, id string, from []model.JobStatus, to model.JobStatus) error
	FailComparison(ctx context.Context, id string, reason string) error
}
