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

// EvaluationHandler handles single-session evaluation endpoints.
type EvaluationHandler struct {
	service *pipeline.Service
}

func NewEvaluationHandler(service *pipeline.Service) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Create handles POST /api/v1/evaluations
//
// @Summary Submit a video for coaching evaluation
// @Description Validates the video and queues a transcription + analysis job
// @Tags evaluations
// @Accept json
// @Produce json
// @Param evaluation body dto.CreateEvaluationRequest true "Evaluation submission"
// @Success 202 {object} dto.EvaluationResponse
// @Failure 422 {object} errors.APIError
// @Router /evaluations [post]
func (h *EvaluationHandler) Create(c *gin.Context) {
	var req dto.CreateEvaluationRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	eval, err := h.service.SubmitEvaluation(c.Request.Context(), req.VideoID)
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusAccepted, dto.NewEvaluationResponse(eval))
}

// Get handles GET /api/v1/evaluations/:id
//
// @Summary Get evaluation by ID
// @Tags evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} dto.EvaluationResponse
// @Failure 404 {object} errors.APIError
// @Router /evaluations/{id} [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	eval, err := h.service.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusOK, dto.NewEvaluationResponse(eval))
}

// GetTranscript handles GET /api/v1/evaluations/:id/transcript
//
// @Summary Get the transcript behind an evaluation
// @Tags evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} dto.TranscriptResponse
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /evaluations/{id}/transcript [get]
func (h *EvaluationHandler) GetTranscript(c *gin.Context) {
	transcript, err := h.service.GetEvaluationTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusOK, dto.NewTranscriptResponse(transcript))
}

// GetReport handles GET /api/v1/evaluations/:id/report
//
// @Summary Get the coaching report of a completed evaluation
// @Tags evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} dto.EvaluationReportResponse
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /evaluations/{id}/report [get]
func (h *EvaluationHandler) GetReport(c *gin.Context) {
	eval, err := h.service.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	if eval.Status != model.StatusCompleted {
		middleware.HandleError(c, errors.NewConflictError("evaluation has no report yet"))
		return
	}
	c.JSON(http.StatusOK, dto.NewEvaluationReportResponse(eval))
}
