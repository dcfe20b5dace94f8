package pipeline

import (
	"fmt"

	"coachlens/internal/app/model"
)

// ValidationError rejects a submission synchronously, before any job record
// is created or queued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotReadyError reports a job artifact requested before the stage that
// produces it has completed.
type NotReadyError struct {
	Kind   model.JobKind
	ID     string
	Status model.JobStatus
	What   string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s not ready for %s %s (status %s)", e.What, e.Kind, e.ID, e.Status)
}

// TranscriptionError marks a terminal transcription-stage failure, including
// an empty transcript from the provider.
type TranscriptionError struct {
	VideoID string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed for video %s: %v", e.VideoID, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }
