package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/httputil"
	"github.com/healthsites/localityd/internal/metrics"
	"github.com/healthsites/localityd/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
	ErrCodeConflict        = "conflict"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondValidationError writes a 400 carrying the first failing field key.
func respondValidationError(c *gin.Context, verr *models.ValidationError) {
	metrics.ErrorsTotal.WithLabelValues(ErrCodeValidationError).Inc()

	resp := gin.H{
		"code":    ErrCodeValidationError,
		"message": verr.Error(),
		"key":     verr.Key,
	}

	if rid := c.GetString("request_id"); rid != "" {
		resp["request_id"] = rid
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// respondServiceError maps store and validation errors to HTTP responses.
// Unexpected errors are logged with operation context and surfaced as a
// generic 500 distinct from validation failures.
func respondServiceError(c *gin.Context, log *logrus.Logger, operation string, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		respondValidationError(c, verr)

		return
	}

	switch {
	case errors.Is(err, models.ErrLocalityNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "locality not found")
	case errors.Is(err, models.ErrCountryNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "country not found")
	case errors.Is(err, models.ErrDomainNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "domain not found")
	case errors.Is(err, models.ErrDuplicateKey):
		respondError(c, http.StatusConflict, ErrCodeConflict, "resource already exists")
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"operation": operation,
			"actor":     c.GetString("actor"),
			"uuid":      c.Param("uuid"),
		}).Error("request failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
