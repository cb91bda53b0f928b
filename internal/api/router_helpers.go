package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/middleware"
	"github.com/healthsites/localityd/internal/ws"
)

// getActor extracts the authenticated actor from the Gin context.
func getActor(c *gin.Context) string {
	actor := c.GetString(middleware.ActorKey)
	if actor == "" {
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing actor")

		return ""
	}

	return actor
}

// validateUUIDParam checks the :uuid path parameter.
func validateUUIDParam(c *gin.Context) string {
	localityUUID := c.Param("uuid")
	if localityUUID == "" || len(localityUUID) > 64 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid locality uuid")

		return ""
	}

	return localityUUID
}

// mapParams holds the validated query parameters of the map layer endpoint.
type mapParams struct {
	box        geo.BBox
	zoom       int
	iconWidth  int
	iconHeight int
	geoname    string
	tag        string
}

// parseMapParams validates the map layer query string. All parameter
// violations are rejected before any store access.
func parseMapParams(c *gin.Context) (mapParams, bool) {
	var p mapParams

	zoom, err := strconv.Atoi(c.Query("zoom"))
	if err != nil || !geo.ValidZoom(zoom) {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "zoom must be an integer between 0 and 20")

		return p, false
	}

	p.zoom = zoom

	box, err := geo.ParseBBox(c.Query("bbox"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed bbox: "+err.Error())

		return p, false
	}

	p.box = box

	p.iconWidth, p.iconHeight, err = parseIconSize(c.Query("iconsize"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "iconsize is required as two non-negative integers")

		return p, false
	}

	p.geoname = strings.TrimSpace(c.Query("geoname"))
	p.tag = strings.ToLower(strings.TrimSpace(c.Query("tag")))

	return p, true
}

// parseIconSize parses "width,height" into two non-negative ints.
func parseIconSize(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, strconv.ErrSyntax
	}

	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w < 0 {
		return 0, 0, strconv.ErrSyntax
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || h < 0 {
		return 0, 0, strconv.ErrSyntax
	}

	return w, h, nil
}

// maxPaginationLimit caps the maximum number of items per page.
const maxPaginationLimit = 200

// maxPaginationOffset caps the maximum offset for paginated queries.
const maxPaginationOffset = 100000

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}

	if v > maxPaginationLimit {
		return maxPaginationLimit
	}

	return v
}

func parseOffset(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}

	if v > maxPaginationOffset {
		return maxPaginationOffset
	}

	return v
}

// wsHandler upgrades the connection and joins the client to the public
// locality event stream.
func wsHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, corsOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS origins are reused as WebSocket origin patterns. The config
		// validator ensures these are safe host patterns (no wildcards etc.).
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       corsOrigins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Error("websocket accept failed")

			return
		}

		client := ws.NewClient(hub, conn)
		hub.Register(client)

		// Derive a context that cancels when either the server shuts down or the request ends.
		wsCtx, wsCancel := context.WithCancel(appCtx)
		go func() {
			select {
			case <-c.Request.Context().Done():
				wsCancel()
			case <-wsCtx.Done():
			}
		}()

		go client.WritePump(wsCtx)
		client.ReadPump(wsCtx)
		wsCancel()
	}
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if actor := c.GetString(middleware.ActorKey); actor != "" {
			fields["actor"] = actor
		}
		log.WithFields(fields).Info("request")
	}
}
