package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context key under which the request ID travels through a request.
const requestIDKey = "request_id"

// RequestID tags every request with an ID so a pipeline submission can be
// traced from the access log to the error body it produced. A caller-supplied
// X-Request-ID is kept; otherwise a fresh UUID is minted.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
