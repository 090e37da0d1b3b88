package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/biasharahub/backend/internal/infrastructure/logger"
)

// RequestIDHeaderKey is the header carrying the request correlation ID
const RequestIDHeaderKey = "X-Request-ID"

// RequestID attaches a correlation ID to every request, reusing the caller's
// when present. The ID rides the request context so log lines downstream
// carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeaderKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeaderKey, requestID)
		c.Next()
	}
}
