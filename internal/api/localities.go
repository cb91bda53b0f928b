package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/models"
)

// LocalityHandler serves the map layer, detail, edit, and history endpoints.
type LocalityHandler struct {
	svc     LocalityService
	history HistoryService
	log     *logrus.Logger
}

// NewLocalityHandler creates a LocalityHandler with the given services and logger.
func NewLocalityHandler(svc LocalityService, history HistoryService, log *logrus.Logger) *LocalityHandler {
	return &LocalityHandler{svc: svc, history: history, log: log}
}

// MapLayer handles GET /api/v1/localities. It returns clustered markers for
// the requested viewport, either a bbox or a named country polygon.
func (h *LocalityHandler) MapLayer(c *gin.Context) {
	p, ok := parseMapParams(c)
	if !ok {
		return
	}

	clusters, err := h.svc.MapClusters(c.Request.Context(), p.box, p.zoom, p.iconWidth, p.iconHeight, p.geoname, p.tag)
	if err != nil {
		respondServiceError(c, h.log, "locality.map", err)

		return
	}

	c.JSON(http.StatusOK, clusters)
}

// Get handles GET /api/v1/localities/:uuid.
func (h *LocalityHandler) Get(c *gin.Context) {
	localityUUID := validateUUIDParam(c)
	if localityUUID == "" {
		return
	}

	detail, err := h.svc.Detail(c.Request.Context(), localityUUID)
	if err != nil {
		respondServiceError(c, h.log, "locality.get", err)

		return
	}

	c.JSON(http.StatusOK, detail)
}

// Create handles POST /api/v1/localities. The caller must be authenticated;
// the resolved actor is recorded on the changeset.
func (h *LocalityHandler) Create(c *gin.Context) {
	actor := getActor(c)
	if actor == "" {
		return
	}

	var sub models.LocalitySubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON payload")

		return
	}

	loc, err := h.svc.Create(c.Request.Context(), &sub, actor)
	if err != nil {
		respondServiceError(c, h.log, "locality.create", err)

		return
	}

	c.JSON(http.StatusCreated, loc)
}

// Update handles PUT /api/v1/localities/:uuid. A submission identical to the
// live state succeeds without recording anything.
func (h *LocalityHandler) Update(c *gin.Context) {
	localityUUID := validateUUIDParam(c)
	if localityUUID == "" {
		return
	}

	actor := getActor(c)
	if actor == "" {
		return
	}

	var sub models.LocalitySubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON payload")

		return
	}

	loc, err := h.svc.Update(c.Request.Context(), localityUUID, &sub, actor)
	if err != nil {
		respondServiceError(c, h.log, "locality.update", err)

		return
	}

	c.JSON(http.StatusOK, loc)
}

// History handles GET /api/v1/localities/:uuid/history. Versions are
// returned newest first.
func (h *LocalityHandler) History(c *gin.Context) {
	localityUUID := validateUUIDParam(c)
	if localityUUID == "" {
		return
	}

	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))

	entries, hasMore, err := h.history.LocalityHistory(c.Request.Context(), localityUUID, limit, offset)
	if err != nil {
		respondServiceError(c, h.log, "locality.history", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries, "has_more": hasMore})
}

// ValueHistory handles GET /api/v1/localities/:uuid/values/history. The
// optional key query narrows the feed to one attribute.
func (h *LocalityHandler) ValueHistory(c *gin.Context) {
	localityUUID := validateUUIDParam(c)
	if localityUUID == "" {
		return
	}

	limit := parseInt(c.DefaultQuery("limit", "50"), 50)
	offset := parseOffset(c.DefaultQuery("offset", "0"))
	key := c.Query("key")

	entries, hasMore, err := h.history.ValueHistory(c.Request.Context(), localityUUID, key, limit, offset)
	if err != nil {
		respondServiceError(c, h.log, "locality.value_history", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries, "has_more": hasMore})
}
