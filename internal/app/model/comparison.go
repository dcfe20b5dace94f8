package model

import "time"

// ComparisonType selects the analysis prompt variant. Each type targets a
// different audience with a different analytical lens.
type ComparisonType string

const (
	ComparePersonalPerformance ComparisonType = "personal_performance"
	CompareClassDelivery       ComparisonType = "class_delivery"
	CompareProgramEvaluation   ComparisonType = "program_evaluation"
)

// Valid reports whether t is one of the three known comparison types.
func (t ComparisonType) Valid() bool {
	switch t {
	case ComparePersonalPerformance, CompareClassDelivery, CompareProgramEvaluation:
		return true
	}
	return false
}

// ComparisonLink joins a comparison to one evaluation, preserving the
// caller's selection order.
type ComparisonLink struct {
	EvaluationID string `json:"evaluation_id"`
	DisplayOrder int    `json:"display_order"`
	Label        string `json:"label"`
}

// Comparison is a cross-session coaching job over 2-10 completed
// evaluations. It reads their reports and metrics, never their transcripts,
// and never mutates the evaluations it references.
type Comparison struct {
	ID                   string                   `json:"id" db:"id"`
	RequestedBy          string                   `json:"requested_by" db:"requested_by"`
	Title                string                   `json:"title,omitempty" db:"title"`
	Type                 ComparisonType           `json:"comparison_type" db:"comparison_type"`
	Status               JobStatus                `json:"status" db:"status"`
	ClassTag             string                   `json:"class_tag,omitempty" db:"class_tag"`
	AnonymizeInstructors bool                     `json:"anonymize_instructors" db:"anonymize_instructors"`
	Links                []ComparisonLink         `json:"links" db:"links"`
	AggregatedMetrics    map[string]MetricSummary `json:"aggregated_metrics" db:"aggregated_metrics"`
	SessionCount         int                      `json:"session_count" db:"session_count"`
	Strengths            []FindingItem            `json:"strengths" db:"strengths"`
	GrowthAreas          []FindingItem            `json:"growth_areas" db:"growth_areas"`
	ReportText           string                   `json:"report_text,omitempty" db:"report_text"`
	AnalysisModel        string                   `json:"analysis_model,omitempty" db:"analysis_model"`
	ErrorDetail          string                   `json:"error_detail,omitempty" db:"error_detail"`
	CreatedAt            time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at" db:"updated_at"`
	StartedAt            *time.Time               `json:"started_at,omitempty" db:"started_at"`
	CompletedAt          *time.Time               `json:"completed_at,omitempty" db:"completed_at"`
}
