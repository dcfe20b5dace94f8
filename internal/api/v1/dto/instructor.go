package dto

import (
	"time"

	"coachlens/internal/app/pipeline"
)

// EvaluationSummary is the compact listing row used on the dashboard.
type EvaluationSummary struct {
	ID          string     `json:"id"`
	VideoID     string     `json:"video_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DashboardResponse is the read-time view of one instructor's history.
type DashboardResponse struct {
	InstructorID         string                 `json:"instructor_id"`
	TotalEvaluations     int                    `json:"total_evaluations"`
	CompletedEvaluations int                    `json:"completed_evaluations"`
	Evaluations          []EvaluationSummary    `json:"evaluations"`
	Trends               []pipeline.MetricTrend `json:"trends"`
	TopStrengths         []pipeline.ThemeCount  `json:"top_strengths"`
	RecurringGrowthAreas []pipeline.ThemeCount  `json:"recurring_growth_areas"`
}

// NewDashboardResponse converts the computed dashboard into its API
// representation.
func NewDashboardResponse(d *pipeline.Dashboard) *DashboardResponse {
	summaries := make([]EvaluationSummary, 0, len(d.Evaluations))
	for _, e := range d.Evaluations {
		summaries = append(summaries, EvaluationSummary{
			ID:          e.ID,
			VideoID:     e.VideoID,
			Status:      string(e.Status),
			CreatedAt:   e.CreatedAt,
			CompletedAt: e.CompletedAt,
		})
	}
	return &DashboardResponse{
		InstructorID:         d.InstructorID,
		TotalEvaluations:     d.Total,
		CompletedEvaluations: d.Completed,
		Evaluations:          summaries,
		Trends:               d.Trends,
		TopStrengths:         d.TopStrengths,
		RecurringGrowthAreas: d.RecurringGrowthAreas,
	}
}
