package dto

import (
	"time"

	"coachlens/internal/api/errors"
	"coachlens/internal/app/model"
	"coachlens/internal/app/pipeline"
	"coachlens/internal/app/repository"
)

// CreateComparisonRequest submits a cross-session comparison over completed
// evaluations.
type CreateComparisonRequest struct {
	RequestedBy          string   `json:"requested_by" binding:"required"`
	Title                string   `json:"title,omitempty"`
	ComparisonType       string   `json:"comparison_type" binding:"required,oneof=personal_performance class_delivery program_evaluation"`
	ClassTag             string   `json:"class_tag,omitempty"`
	AnonymizeInstructors bool     `json:"anonymize_instructors,omitempty"`
	EvaluationIDs        []string `json:"evaluation_ids" binding:"required,min=2,max=10"`
	Labels               []string `json:"labels,omitempty"`
	StartImmediately     bool     `json:"start_immediately,omitempty"`
}

// Validate performs domain-specific validation beyond binding tags.
func (r *CreateComparisonRequest) Validate() error {
	validationErrors := make(map[string]string)

	if len(r.Labels) > 0 && len(r.Labels) != len(r.EvaluationIDs) {
		validationErrors["labels"] = "must match evaluation_ids in length when provided"
	}
	if r.ComparisonType == string(model.CompareClassDelivery) && r.ClassTag == "" {
		validationErrors["class_tag"] = "is required for class_delivery comparisons"
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Invalid comparison request", validationErrors)
	}
	return nil
}

// ToRequest converts the DTO into a pipeline submission.
func (r *CreateComparisonRequest) ToRequest() pipeline.ComparisonRequest {
	return pipeline.ComparisonRequest{
		RequestedBy:          r.RequestedBy,
		Title:                r.Title,
		Type:                 model.ComparisonType(r.ComparisonType),
		ClassTag:             r.ClassTag,
		AnonymizeInstructors: r.AnonymizeInstructors,
		EvaluationIDs:        r.EvaluationIDs,
		Labels:               r.Labels,
		StartImmediately:     r.StartImmediately,
	}
}

// ComparisonResponse represents a comparison job in API responses.
type ComparisonResponse struct {
	ID                   string                         `json:"id"`
	RequestedBy          string                         `json:"requested_by"`
	Title                string                         `json:"title,omitempty"`
	ComparisonType       string                         `json:"comparison_type"`
	Status               string                         `json:"status"`
	ClassTag             string                         `json:"class_tag,omitempty"`
	AnonymizeInstructors bool                           `json:"anonymize_instructors"`
	Links                []model.ComparisonLink         `json:"links"`
	AggregatedMetrics    map[string]model.MetricSummary `json:"aggregated_metrics,omitempty"`
	SessionCount         int                            `json:"session_count"`
	Strengths            []model.FindingItem            `json:"strengths,omitempty"`
	GrowthAreas          []model.FindingItem            `json:"growth_areas,omitempty"`
	ReportText           string                         `json:"report_text,omitempty"`
	AnalysisModel        string                         `json:"analysis_model,omitempty"`
	ErrorDetail          string                         `json:"error_detail,omitempty"`
	CreatedAt            time.Time                      `json:"created_at"`
	UpdatedAt            time.Time                      `json:"updated_at"`
	StartedAt            *time.Time                     `json:"started_at,omitempty"`
	CompletedAt          *time.Time                     `json:"completed_at,omitempty"`
}

// NewComparisonResponse converts a comparison record into its API
// representation.
func NewComparisonResponse(c *model.Comparison) *ComparisonResponse {
	return &ComparisonResponse{
		ID:                   c.ID,
		RequestedBy:          c.RequestedBy,
		Title:                c.Title,
		ComparisonType:       string(c.Type),
		Status:               string(c.Status),
		ClassTag:             c.ClassTag,
		AnonymizeInstructors: c.AnonymizeInstructors,
		Links:                c.Links,
		AggregatedMetrics:    c.AggregatedMetrics,
		SessionCount:         c.SessionCount,
		Strengths:            c.Strengths,
		GrowthAreas:          c.GrowthAreas,
		ReportText:           c.ReportText,
		AnalysisModel:        c.AnalysisModel,
		ErrorDetail:          c.ErrorDetail,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
		StartedAt:            c.StartedAt,
		CompletedAt:          c.CompletedAt,
	}
}

// ListComparisonsQuery filters and pages the comparison listing.
type ListComparisonsQuery struct {
	ComparisonType string `form:"comparison_type" binding:"omitempty,oneof=personal_performance class_delivery program_evaluation"`
	Status         string `form:"status" binding:"omitempty,oneof=draft queued transcribing analyzing completed failed"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToFilter converts the query into a repository filter.
func (q *ListComparisonsQuery) ToFilter() repository.ComparisonFilter {
	return repository.ComparisonFilter{
		Type:     model.ComparisonType(q.ComparisonType),
		Status:   model.JobStatus(q.Status),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// ComparisonListResponse is one page of comparisons.
type ComparisonListResponse struct {
	Items    []*ComparisonResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// NewComparisonListResponse converts a listing page into its API
// representation.
func NewComparisonListResponse(list *pipeline.ComparisonList) *ComparisonListResponse {
	items := make([]*ComparisonResponse, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, NewComparisonResponse(&list.Items[i]))
	}
	return &ComparisonListResponse{
		Items:    items,
		Total:    list.Total,
		Page:     list.Page,
		PageSize: list.PageSize,
	}
}

// ComparisonReportResponse is the report-only projection of a completed
// comparison.
type ComparisonReportResponse struct {
	ID                string                         `json:"id"`
	Title             string                         `json:"title,omitempty"`
	ComparisonType    string                         `json:"comparison_type"`
	SessionCount      int                            `json:"session_count"`
	ReportText        string                         `json:"report_text"`
	Strengths         []model.FindingItem            `json:"strengths"`
	GrowthAreas       []model.FindingItem            `json:"growth_areas"`
	AggregatedMetrics map[string]model.MetricSummary `json:"aggregated_metrics"`
	AnalysisModel     string                         `json:"analysis_model,omitempty"`
	CompletedAt       *time.Time                     `json:"completed_at,omitempty"`
}

// NewComparisonReportResponse projects a completed comparison down to its
// report.
func NewComparisonReportResponse(c *model.Comparison) *ComparisonReportResponse {
	return &ComparisonReportResponse{
		ID:                c.ID,
		Title:             c.Title,
		ComparisonType:    string(c.Type),
		SessionCount:      c.SessionCount,
		ReportText:        c.ReportText,
		Strengths:         c.Strengths,
		GrowthAreas:       c.GrowthAreas,
		AggregatedMetrics: c.AggregatedMetrics,
		AnalysisModel:     c.AnalysisModel,
		CompletedAt:       c.CompletedAt,
	}
}
