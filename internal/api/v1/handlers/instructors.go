package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachlens/internal/api/errors"
	"coachlens/internal/api/middleware"
	"coachlens/internal/api/v1/dto"
	"coachlens/internal/app/pipeline"
)

// InstructorHandler handles instructor history endpoints. Everything here is
// computed on read; nothing is persisted.
type InstructorHandler struct {
	service *pipeline.Service
}

func NewInstructorHandler(service *pipeline.Service) *InstructorHandler {
	return &InstructorHandler{service: service}
}

// Dashboard handles GET /api/v1/instructors/:id/dashboard
//
// @Summary Instructor dashboard
// @Description Per-metric trends over the instructor's completed evaluations
// @Tags instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} dto.DashboardResponse
// @Router /instructors/{id}/dashboard [get]
func (h *InstructorHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.InstructorDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusOK, dto.NewDashboardResponse(dashboard))
}

// MetricSeries handles GET /api/v1/instructors/:id/metrics/:key
//
// @Summary One metric's chronological history for an instructor
// @Tags instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Param key path string true "Metric key"
// @Success 200 {object} pipeline.MetricSeries
// @Failure 422 {object} errors.APIError
// @Router /instructors/{id}/metrics/{key} [get]
func (h *InstructorHandler) MetricSeries(c *gin.Context) {
	series, err := h.service.InstructorMetricSeries(c.Request.Context(), c.Param("id"), c.Param("key"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusOK, series)
}
