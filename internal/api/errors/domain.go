package errors

import (
	stderrors "errors"

	"coachlens/internal/app/analysis"
	"coachlens/internal/app/jobs"
	"coachlens/internal/app/pipeline"
)

// FromDomain maps pipeline-layer errors onto API error kinds. Anything not in
// the taxonomy becomes an internal error with its message suppressed by the
// recovery middleware.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var validation *pipeline.ValidationError
	if stderrors.As(err, &validation) {
		return NewValidationError("Validation failed", map[string]string{validation.Field: validation.Reason})
	}

	var notFound *jobs.NotFoundError
	if stderrors.As(err, &notFound) {
		return NewNotFoundError(string(notFound.Kind))
	}

	var conflict *jobs.ConflictError
	if stderrors.As(err, &conflict) {
		return NewConflictError(conflict.Error())
	}

	var notReady *pipeline.NotReadyError
	if stderrors.As(err, &notReady) {
		return NewConflictError(notReady.Error())
	}

	var transcription *pipeline.TranscriptionError
	if stderrors.As(err, &transcription) {
		return NewServiceUnavailableError(transcription.Error())
	}

	var parse *analysis.ParseError
	if stderrors.As(err, &parse) {
		return NewInternalError(parse.Error())
	}

	return NewInternalError(err.Error())
}
