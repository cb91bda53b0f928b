// Package middleware provides HTTP middleware for localityd.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActorKey is the gin context key holding the resolved actor name.
const ActorKey = "actor"

// authTimingFloor is the minimum response time for failed auth to prevent
// timing oracles distinguishing valid from invalid API keys.
const authTimingFloor = 50 * time.Millisecond

// ActorLookup resolves an API key to an actor name. The core never
// authenticates by itself; this is the boundary to the identity layer.
type ActorLookup interface {
	GetActorByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return key
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware returns Gin middleware that authenticates edit requests
// via Bearer token and stores the resolved actor in the context.
func AuthMiddleware(lookup ActorLookup, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		actor, err := lookup.GetActorByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			log.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
				"key_prefix": truncateKey(apiKey),
			}).Warn("authentication failed: invalid api key")

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
