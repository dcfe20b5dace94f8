package jobs

import (
	"fmt"

	"coachlens/internal/app/model"
)

// ConflictError signals an attempt to move a job that is not in a state the
// caller expected: advancing a terminal job, or starting a job that another
// worker already picked up. The losing caller logs it and walks away; state
// is untouched.
type ConflictError struct {
	JobID   string
	Current model.JobStatus
	Target  model.JobStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("job %s: cannot transition %s -> %s", e.JobID, e.Current, e.Target)
}

// NotFoundError signals a job id that resolves to nothing.
type NotFoundError struct {
	Kind model.JobKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
