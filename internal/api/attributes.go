package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/models"
)

// AttributeHandler serves the attribute registry endpoints.
type AttributeHandler struct {
	svc SchemaService
	log *logrus.Logger
}

// NewAttributeHandler creates an AttributeHandler with the given service and logger.
func NewAttributeHandler(svc SchemaService, log *logrus.Logger) *AttributeHandler {
	return &AttributeHandler{svc: svc, log: log}
}

// List handles GET /api/v1/attributes.
func (h *AttributeHandler) List(c *gin.Context) {
	specs, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "attribute.list", err)

		return
	}

	if specs == nil {
		specs = []models.Specification{}
	}

	c.JSON(http.StatusOK, gin.H{"attributes": specs})
}

// Ensure handles POST /api/v1/attributes. Registering an attribute that
// already exists with the same required flag is a no-op.
func (h *AttributeHandler) Ensure(c *gin.Context) {
	actor := getActor(c)
	if actor == "" {
		return
	}

	var req models.EnsureSpecificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON payload")

		return
	}

	spec, err := h.svc.Ensure(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, h.log, "attribute.ensure", err)

		return
	}

	c.JSON(http.StatusOK, spec)
}
