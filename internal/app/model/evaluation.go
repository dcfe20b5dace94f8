package model

import "time"

// FindingItem is one titled strength or growth area extracted from an
// analysis report. Timestamp is an optional [HH:MM:SS] citation.
type FindingItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// MetricSummary is the aggregated view of one named metric across a set of
// evaluations: arithmetic mean, range, and a two-point trend direction.
// Trend is empty when fewer than two evaluations carried the metric.
type MetricSummary struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
	Trend   string  `json:"trend,omitempty"`
}

// Evaluation is a single-session coaching job: one video driven through
// transcription and analysis. Only the evaluation pipeline mutates it.
type Evaluation struct {
	ID            string             `json:"id" db:"id"`
	VideoID       string             `json:"video_id" db:"video_id"`
	InstructorID  string             `json:"instructor_id" db:"instructor_id"`
	Status        JobStatus          `json:"status" db:"status"`
	TranscriptID  string             `json:"transcript_id,omitempty" db:"transcript_id"`
	ReportText    string             `json:"report_text,omitempty" db:"report_text"`
	Strengths     []FindingItem      `json:"strengths" db:"strengths"`
	GrowthAreas   []FindingItem      `json:"growth_areas" db:"growth_areas"`
	Metrics       map[string]float64 `json:"metrics" db:"metrics"`
	AnalysisModel string             `json:"analysis_model,omitempty" db:"analysis_model"`
	RawAnalysis   string             `json:"-" db:"raw_analysis"`
	ErrorDetail   string             `json:"error_detail,omitempty" db:"error_detail"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
	StartedAt     *time.Time         `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty" db:"completed_at"`
}
