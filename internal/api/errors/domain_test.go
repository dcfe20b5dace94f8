package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachlens/internal/app/analysis"
	"coachlens/internal/app/jobs"
	"coachlens/internal/app/model"
	"coachlens/internal/app/pipeline"
)

func TestFromDomain(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		kind   ErrorKind
		status int
	}{
		{
			name:   "invalid submission",
			err:    &pipeline.ValidationError{Field: "video_id", Reason: "unknown video"},
			kind:   KindValidation,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "missing record",
			err:    &jobs.NotFoundError{Kind: model.KindEvaluation, ID: "e-1"},
			kind:   KindNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "lost status gate",
			err:    &jobs.ConflictError{JobID: "e-1", Current: model.StatusCompleted, Target: model.StatusTranscribing},
			kind:   KindConflict,
			status: http.StatusConflict,
		},
		{
			name:   "artifact not ready yet",
			err:    &pipeline.NotReadyError{Kind: model.KindEvaluation, ID: "e-1", Status: model.StatusQueued, What: "transcript"},
			kind:   KindConflict,
			status: http.StatusConflict,
		},
		{
			name:   "transcription provider outage",
			err:    &pipeline.TranscriptionError{VideoID: "vid-1", Err: fmt.Errorf("connection refused")},
			kind:   KindServiceUnavailable,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "unparseable analysis",
			err:    &analysis.ParseError{Reason: "no recognizable sections"},
			kind:   KindInternal,
			status: http.StatusInternalServerError,
		},
		{
			name:   "untyped error",
			err:    fmt.Errorf("disk full"),
			kind:   KindInternal,
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := FromDomain(tc.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.status, apiErr.HTTPStatus())
		})
	}
}

func TestFromDomainUnwrapsAndPassesThrough(t *testing.T) {
	// A wrapped domain error still maps by its inner type.
	wrapped := fmt.Errorf("run stage: %w",
		&pipeline.TranscriptionError{VideoID: "vid-1", Err: fmt.Errorf("timeout")})
	assert.Equal(t, KindServiceUnavailable, FromDomain(wrapped).Kind)

	// An already-shaped API error is returned as-is.
	orig := NewConflictError("already started")
	assert.Same(t, orig, FromDomain(orig))

	assert.Nil(t, FromDomain(nil))
}
