package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachlens/internal/api/errors"
	"coachlens/internal/api/middleware"
	"coachlens/internal/api/v1/dto"
	"coachlens/internal/app/pipeline"
)

// VideoHandler handles video registration endpoints.
type VideoHandler struct {
	service *pipeline.Service
}

func NewVideoHandler(service *pipeline.Service) *VideoHandler {
	return &VideoHandler{service: service}
}

// Register handles POST /api/v1/videos
//
// @Summary Register a stored recording
// @Description Records an already-stored recording so evaluations can reference it
// @Tags videos
// @Accept json
// @Produce json
// @Param video body dto.RegisterVideoRequest true "Video registration data"
// @Success 201 {object} dto.VideoResponse
// @Failure 422 {object} errors.APIError
// @Router /videos [post]
func (h *VideoHandler) Register(c *gin.Context) {
	var req dto.RegisterVideoRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	video, err := h.service.RegisterVideo(c.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusCreated, dto.NewVideoResponse(video))
}

// Get handles GET /api/v1/videos/:id
//
// @Summary Get video by ID
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} dto.VideoResponse
// @Failure 404 {object} errors.APIError
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.service.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.JSON(http.StatusOK, dto.NewVideoResponse(video))
}

// Delete handles DELETE /api/v1/videos/:id
//
// @Summary Delete a video
// @Description Removes the stored recording and everything derived from it
// @Tags videos
// @Param id path string true "Video ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /videos/{id} [delete]
func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, errors.FromDomain(err))
		return
	}
	c.Status(http.StatusNoContent)
}
