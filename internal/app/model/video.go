package model

import "time"

// Video is a previously uploaded recording. Upload itself happens outside
// this service; we only consume the stored object key.
type Video struct {
	ID              string    `json:"id" db:"id"`
	InstructorID    string    `json:"instructor_id" db:"instructor_id"`
	Filename        string    `json:"filename" db:"filename"`
	SourceKey       string    `json:"source_key" db:"source_key"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
	UploadedAt      time.Time `json:"uploaded_at" db:"uploaded_at"`
}
