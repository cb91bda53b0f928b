package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is where handlers read the request ID from the gin context.
	RequestIDKey = "request_id"

	// RequestIDHeader carries the request ID back to the client.
	RequestIDHeader = "X-Request-ID"
)

// RequestID tags every request with a fresh server-side UUID. Edit requests
// reference it in error responses and audit log entries. A client-supplied
// X-Request-ID is recorded alongside but never trusted as the canonical ID.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			log.WithFields(logrus.Fields{
				"request_id":        id,
				"client_request_id": clientID,
			}).Debug("client request ID recorded")
			c.Set("client_request_id", clientID)
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
