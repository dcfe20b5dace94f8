package dto

import (
	"time"

	"coachlens/internal/app/model"
)

// CreateEvaluationRequest submits one video for coaching evaluation.
type CreateEvaluationRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}

// EvaluationResponse represents an evaluation job in API responses.
type EvaluationResponse struct {
	ID            string             `json:"id"`
	VideoID       string             `json:"video_id"`
	InstructorID  string             `json:"instructor_id"`
	Status        string             `json:"status"`
	TranscriptID  string             `json:"transcript_id,omitempty"`
	ReportText    string             `json:"report_text,omitempty"`
	Strengths     []model.FindingItem `json:"strengths,omitempty"`
	GrowthAreas   []model.FindingItem `json:"growth_areas,omitempty"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	AnalysisModel string             `json:"analysis_model,omitempty"`
	ErrorDetail   string             `json:"error_detail,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	StartedAt     *time.Time         `json:"started_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// NewEvaluationResponse converts an evaluation record into its API
// representation.
func NewEvaluationResponse(e *model.Evaluation) *EvaluationResponse {
	return &EvaluationResponse{
		ID:            e.ID,
		VideoID:       e.VideoID,
		InstructorID:  e.InstructorID,
		Status:        string(e.Status),
		TranscriptID:  e.TranscriptID,
		ReportText:    e.ReportText,
		Strengths:     e.Strengths,
		GrowthAreas:   e.GrowthAreas,
		Metrics:       e.Metrics,
		AnalysisModel: e.AnalysisModel,
		ErrorDetail:   e.ErrorDetail,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		StartedAt:     e.StartedAt,
		CompletedAt:   e.CompletedAt,
	}
}

// TranscriptResponse represents the transcript behind an evaluation.
type TranscriptResponse struct {
	ID              string            `json:"id"`
	VideoID         string            `json:"video_id"`
	Text            string            `json:"text"`
	Utterances      []model.Utterance `json:"utterances"`
	WordCount       int               `json:"word_count"`
	SpeakerCount    int               `json:"speaker_count"`
	DurationSeconds int               `json:"duration_seconds"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewTranscriptResponse converts a transcript record into its API
// representation.
func NewTranscriptResponse(t *model.Transcript) *TranscriptResponse {
	return &TranscriptResponse{
		ID:              t.ID,
		VideoID:         t.VideoID,
		Text:            t.Text,
		Utterances:      t.Utterances,
		WordCount:       t.WordCount,
		SpeakerCount:    t.SpeakerCount,
		DurationSeconds: t.DurationSeconds,
		CreatedAt:       t.CreatedAt,
	}
}

// EvaluationReportResponse is the report-only projection of a completed
// evaluation.
type EvaluationReportResponse struct {
	ID            string              `json:"id"`
	InstructorID  string              `json:"instructor_id"`
	ReportText    string              `json:"report_text"`
	Strengths     []model.FindingItem `json:"strengths"`
	GrowthAreas   []model.FindingItem `json:"growth_areas"`
	Metrics       map[string]float64  `json:"metrics"`
	AnalysisModel string              `json:"analysis_model,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
}

// NewEvaluationReportResponse projects a completed evaluation down to its
// report.
func NewEvaluationReportResponse(e *model.Evaluation) *EvaluationReportResponse {
	return &EvaluationReportResponse{
		ID:            e.ID,
		InstructorID:  e.InstructorID,
		ReportText:    e.ReportText,
		Strengths:     e.Strengths,
		GrowthAreas:   e.GrowthAreas,
		Metrics:       e.Metrics,
		AnalysisModel: e.AnalysisModel,
		CompletedAt:   e.CompletedAt,
	}
}
