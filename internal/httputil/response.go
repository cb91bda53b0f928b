// Package httputil holds the JSON error shape shared by handlers and middleware.
package httputil

import "github.com/gin-gonic/gin"

// RespondError aborts the request with a code/message error body. The
// request ID is attached when the request-id middleware has set one, so
// clients can quote it when reporting a failed edit.
func RespondError(c *gin.Context, status int, code, message string) {
	var requestID string
	if rid, exists := c.Get("request_id"); exists {
		if s, ok := rid.(string); ok {
			requestID = s
		}
	}

	resp := map[string]string{
		"code":    code,
		"message": message,
	}

	if requestID != "" {
		resp["request_id"] = requestID
	}

	c.AbortWithStatusJSON(status, resp)
}
