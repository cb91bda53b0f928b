// Package api provides HTTP handlers for localityd.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/dbpool"
	"github.com/healthsites/localityd/internal/ws"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pool      *dbpool.Pool
	hub       *ws.Hub
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
func NewHealthHandler(pool *dbpool.Pool, hub *ws.Hub, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		pool:      pool,
		hub:       hub,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	// Best-effort database ping (non-fatal for liveness).
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	} else {
		resp.Database = "not_configured"
	}

	if h.hub != nil {
		resp.WSClients = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/ready — checks DB connectivity and schema.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"database": "ok",
		"schema":   "ok",
	}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.pool.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		checks["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	if checks["database"] == "ok" {
		if err := h.checkSchema(ctx); err != nil {
			h.log.WithError(err).Error("readiness: schema check failed")
			checks["schema"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	} else {
		checks["schema"] = "unknown"
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}

// checkSchema verifies migrations have run by querying the domains table.
func (h *HealthHandler) checkSchema(ctx context.Context) error {
	var count int
	err := h.pool.QueryRow(ctx, "SELECT COUNT(*) FROM domains").Scan(&count)
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	return nil
}
