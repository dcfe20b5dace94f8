package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"coachlens/internal/api/errors"
)

// ErrorHandler recovers panics into JSON error bodies. A recovered
// *errors.APIError keeps its kind and status; anything else is logged
// server-side and reported as a generic internal error so provider and store
// details never reach clients.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(requestIDKey)

		apiErr, ok := recovered.(*errors.APIError)
		if !ok {
			logger.Error("unhandled error",
				"recovered", recovered,
				"request_id", requestID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			apiErr = errors.NewInternalError("internal server error")
		}
		apiErr.RequestID = requestID

		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes an *errors.APIError response directly; anything else
// panics into the recovery middleware above.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		panic(err)
	}
	apiErr.RequestID = c.GetString(requestIDKey)
	c.Header("Content-Type", "application/json")
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
