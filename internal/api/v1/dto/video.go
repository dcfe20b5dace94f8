package dto

import (
	"time"

	"coachlens/internal/app/model"
)

// RegisterVideoRequest records an already-stored recording for evaluation.
type RegisterVideoRequest struct {
	InstructorID    string `json:"instructor_id" binding:"required"`
	Filename        string `json:"filename,omitempty"`
	SourceKey       string `json:"source_key" binding:"required"`
	DurationSeconds int    `json:"duration_seconds" binding:"required,gt=0"`
}

// ToModel converts the request into a video record.
func (r *RegisterVideoRequest) ToModel() *model.Video {
	return &model.Video{
		InstructorID:    r.InstructorID,
		Filename:        r.Filename,
		SourceKey:       r.SourceKey,
		DurationSeconds: r.DurationSeconds,
	}
}

// VideoResponse represents a video in API responses.
type VideoResponse struct {
	ID              string    `json:"id"`
	InstructorID    string    `json:"instructor_id"`
	Filename        string    `json:"filename,omitempty"`
	SourceKey       string    `json:"source_key"`
	DurationSeconds int       `json:"duration_seconds"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// NewVideoResponse converts a video record into its API representation.
func NewVideoResponse(v *model.Video) *VideoResponse {
	return &VideoResponse{
		ID:              v.ID,
		InstructorID:    v.InstructorID,
		Filename:        v.Filename,
		SourceKey:       v.SourceKey,
		DurationSeconds: v.DurationSeconds,
		UploadedAt:      v.UploadedAt,
	}
}
