package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachlens/internal/api/errors"
	"coachlens/internal/api/middleware"
	"coachlens/internal/api/v1/dto"
	"coachlens/internal/app/model"
	"coachlens/internal/app/pipeline"
)

// ComparisonHandler handles cross-session comparison endpoints.
type ComparisonHandler struct {
	service *pipeline.Service
}

func NewComparisonHandler(service *pipeline.Service) *ComparisonHandler {
	return &ComparisonHandler{service: service}
}

// Create handles POST /api/v1/comparisons
//
// @Summary Submit a cross-session comparison
// @Description Validates the referenced evaluations and creates the comparison, queued or draft
// @Tags comparisons
// @Accept json
// @Produce json
// @Param comparison body dto.CreateComparisonRequest true "Comparison submission"
// @Success 202 {object} dto.ComparisonResponse
// @Failure 422 {object} errors.APIError
// @Router /comparisons [post]
func (h *ComparisonHandler) Create(c *gin.Context) {
	var req dto.CreateComparisonRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	comp, err := h.service.SubmitComparison(c.Request.Context(), req.ToRequest())
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	status := http.StatusAccepted
	if comp.Status == model.StatusDraft {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewComparisonResponse(comp))
}

// List handles GET /api/v1/comparisons
//
// @Summary List comparisons, newest first
// @Tags comparisons
// @Produce json
// @Param comparison_type query string false "Filter by comparison type"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.ComparisonListResponse
// @Failure 400 {object} errors.APIError
// @Router /comparisons [get]
func (h *ComparisonHandler) List(c *gin.Context) {
	var query dto.ListComparisonsQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	list, err := h.service.ListComparisons(c.Request.Context(), query.ToFilter())
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusOK, dto.NewComparisonListResponse(list))
}

// Delete handles DELETE /api/v1/comparisons/:id
//
// @Summary Delete a comparison
// @Description Removes the comparison; the linked evaluations are kept
// @Tags comparisons
// @Param id path string true "Comparison ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /comparisons/{id} [delete]
func (h *ComparisonHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteComparison(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Start handles POST /api/v1/comparisons/:id/start
//
// @Summary Queue a draft comparison
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 202 {object} dto.ComparisonResponse
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /comparisons/{id}/start [post]
func (h *ComparisonHandler) Start(c *gin.Context) {
	comp, err := h.service.StartComparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusAccepted, dto.NewComparisonResponse(comp))
}

// Get handles GET /api/v1/comparisons/:id
//
// @Summary Get comparison by ID
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 200 {object} dto.ComparisonResponse
// @Failure 404 {object} errors.APIError
// @Router /comparisons/{id} [get]
func (h *ComparisonHandler) Get(c *gin.Context) {
	comp, err := h.service.GetComparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusOK, dto.NewComparisonResponse(comp))
}

// GetReport handles GET /api/v1/comparisons/:id/report
//
// @Summary Get the report of a completed comparison
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 200 {object} dto.ComparisonReportResponse
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /comparisons/{id}/report [get]
func (h *ComparisonHandler) GetReport(c *gin.Context) {
	comp, err := h.service.GetComparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	if comp.Status != model.StatusCompleted {
		middleware.HandleError(c, errors.NewConflictError("comparison has no report yet"))
		return
	}
	c.JSON(http.StatusOK, dto.NewComparisonReportResponse(comp))
}
