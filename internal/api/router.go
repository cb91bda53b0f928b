package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/dbpool"
	"github.com/healthsites/localityd/internal/middleware"
	"github.com/healthsites/localityd/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Hub         *ws.Hub
	Localities  LocalityService
	Stats       StatsService
	Schema      SchemaService
	History     HistoryService
	ActorLookup middleware.ActorLookup
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 100      // requests per second per IP
	rateBurst   = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
// Reads are public; edits and schema changes require an API key.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version)
	localities := NewLocalityHandler(deps.Localities, deps.History, log)
	search := NewSearchHandler(deps.Localities, log)
	stats := NewStatsHandler(deps.Stats, log)
	attributes := NewAttributeHandler(deps.Schema, log)

	// Health and readiness.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Map layer and locality reads.
	api.GET("/localities", localities.MapLayer)
	api.GET("/localities/:uuid", localities.Get)
	api.GET("/localities/:uuid/history", localities.History)
	api.GET("/localities/:uuid/values/history", localities.ValueHistory)

	// Autocomplete.
	api.GET("/search/localities", search.Localities)
	api.GET("/search/tags", search.Tags)
	api.GET("/search/countries", search.Countries)

	// Statistics.
	api.GET("/statistics", stats.Get)
	api.GET("/statistics/simple", stats.Simple)

	// Attribute registry.
	api.GET("/attributes", attributes.List)

	// WebSocket event stream (public, push-only).
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))

	// Mutations require authentication.
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(middleware.NewCachedActorLookup(ctx, deps.ActorLookup), log))

	auth.POST("/localities", localities.Create)
	auth.PUT("/localities/:uuid", localities.Update)
	auth.POST("/attributes", attributes.Ensure)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
