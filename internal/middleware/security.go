package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders returns Gin middleware that sets common security response headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		c.Header("Permissions-Policy", "camera=(), microphone=()")
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
