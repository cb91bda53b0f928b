package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/models"
)

// StatsHandler serves the statistics endpoints.
type StatsHandler struct {
	svc StatsService
	log *logrus.Logger
}

// NewStatsHandler creates a StatsHandler with the given service and logger.
func NewStatsHandler(svc StatsService, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: log}
}

// Get handles GET /api/v1/statistics. Country and tag filters compose; an
// empty filter reports on the whole dataset.
func (h *StatsHandler) Get(c *gin.Context) {
	filter := models.StatisticsFilter{
		Country: strings.TrimSpace(c.Query("country")),
		Tag:     strings.ToLower(strings.TrimSpace(c.Query("tag"))),
	}

	stats, err := h.svc.GetStatistics(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, h.log, "stats.get", err)

		return
	}

	c.JSON(http.StatusOK, stats)
}

// Simple handles GET /api/v1/statistics/simple, the widget-embeddable
// count plus completeness pair.
func (h *StatsHandler) Simple(c *gin.Context) {
	country := strings.TrimSpace(c.Query("country"))

	stat, err := h.svc.GetSimpleStatistic(c.Request.Context(), country)
	if err != nil {
		respondServiceError(c, h.log, "stats.simple", err)

		return
	}

	c.JSON(http.StatusOK, stat)
}
