package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodySize caps the request body. Locality submissions are small JSON
// documents, so anything past the cap is junk and fails at read time.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
