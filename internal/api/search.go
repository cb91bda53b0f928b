package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const minSearchQueryLen = 2

// SearchHandler serves the autocomplete endpoints.
type SearchHandler struct {
	svc LocalityService
	log *logrus.Logger
}

// NewSearchHandler creates a SearchHandler with the given service and logger.
func NewSearchHandler(svc LocalityService, log *logrus.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, log: log}
}

// Localities handles GET /api/v1/search/localities.
func (h *SearchHandler) Localities(c *gin.Context) {
	h.respond(c, "search.localities", h.svc.SearchNames)
}

// Tags handles GET /api/v1/search/tags.
func (h *SearchHandler) Tags(c *gin.Context) {
	h.respond(c, "search.tags", h.svc.SearchTags)
}

// Countries handles GET /api/v1/search/countries.
func (h *SearchHandler) Countries(c *gin.Context) {
	h.respond(c, "search.countries", h.svc.SearchCountries)
}

func (h *SearchHandler) respond(c *gin.Context, operation string, search func(ctx context.Context, prefix string) ([]string, error)) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < minSearchQueryLen {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "query must be at least 2 characters")

		return
	}

	results, err := search(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, operation, err)

		return
	}

	if results == nil {
		results = []string{}
	}

	c.JSON(http.StatusOK, results)
}
