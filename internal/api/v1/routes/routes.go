package routes

import (
	"github.com/gin-gonic/gin"

	"coachlens/internal/api/v1/handlers"
	"coachlens/internal/app/pipeline"
)

// RegisterRoutes registers all v1 API routes.
func RegisterRoutes(router *gin.RouterGroup, service *pipeline.Service) {
	videoHandler := handlers.NewVideoHandler(service)
	videos := router.Group("/videos")
	{
		videos.POST("", videoHandler.Register)
		videos.GET("/:id", videoHandler.Get)
		videos.DELETE("/:id", videoHandler.Delete)
	}

	evaluationHandler := handlers.NewEvaluationHandler(service)
	evaluations := router.Group("/evaluations")
	{
		evaluations.POST("", evaluationHandler.Create)
		evaluations.GET("/:id", evaluationHandler.Get)
		evaluations.GET("/:id/transcript", evaluationHandler.GetTranscript)
		evaluations.GET("/:id/report", evaluationHandler.GetReport)
	}

	comparisonHandler := handlers.NewComparisonHandler(service)
	comparisons := router.Group("/comparisons")
	{
		comparisons.POST("", comparisonHandler.Create)
		comparisons.GET("", comparisonHandler.List)
		comparisons.GET("/:id", comparisonHandler.Get)
		comparisons.GET("/:id/report", comparisonHandler.GetReport)
		comparisons.POST("/:id/start", comparisonHandler.Start)
		comparisons.DELETE("/:id", comparisonHandler.Delete)
	}

	instructorHandler := handlers.NewInstructorHandler(service)
	instructors := router.Group("/instructors")
	{
		instructors.GET("/:id/dashboard", instructorHandler.Dashboard)
		instructors.GET("/:id/metrics/:key", instructorHandler.MetricSeries)
	}
}
