package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/presentation/http/middleware"
)

// GrowRequest is the create/update request body for grows.
type GrowRequest struct {
	Species         string `json:"species" binding:"required"`
	Variant         string `json:"variant"`
	InoculationDate string `json:"inoculation_date"`
	SpawnSubstrate  string `json:"spawn_substrate"`
	BulkSubstrate   string `json:"bulk_substrate"`
}

// GrowHandlers contains the grow HTTP handlers.
type GrowHandlers struct {
	growService *services.GrowService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewGrowHandlers creates grow handlers with injected dependencies.
func NewGrowHandlers(growService *services.GrowService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *GrowHandlers {
	return &GrowHandlers{
		growService: growService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ListGrows handles GET /api/v1/grows
func (h *GrowHandlers) ListGrows(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	offset, limit := pageParams(c)
	grows, err := h.growService.List(u.ID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grows)
}

// GetGrow handles GET /api/v1/grows/:id
func (h *GrowHandlers) GetGrow(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grow id"})
		return
	}

	g, err := h.growService.GetByID(u.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// CreateGrow handles POST /api/v1/grows
func (h *GrowHandlers) CreateGrow(c *gin.Context) {
	start := time.Now()
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	marker := h.perfTracker.StartOperation("create_grow_request")
	defer marker.Complete()

	var req GrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	g, err := h.growService.Create(u.ID, growFromRequest(&req))
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Cultivation().Info("Create grow request completed", "growId", g.ID, "duration", time.Since(start))
	c.JSON(http.StatusCreated, g)
}

// UpdateGrow handles PUT /api/v1/grows/:id
func (h *GrowHandlers) UpdateGrow(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grow id"})
		return
	}

	var req GrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	g, err := h.growService.Update(u.ID, id, growFromRequest(&req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// DeleteGrow handles DELETE /api/v1/grows/:id
func (h *GrowHandlers) DeleteGrow(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grow id"})
		return
	}

	if err := h.growService.Delete(u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignInventory handles POST /api/v1/grows/:id/inventory/:itemId
func (h *GrowHandlers) AssignInventory(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	growID, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grow id"})
		return
	}
	itemID, err := idParam(c, "itemId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory item id"})
		return
	}

	item, err := h.growService.AssignInventory(u.ID, growID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func growFromRequest(req *GrowRequest) *cultivation.Grow {
	return &cultivation.Grow{
		Species:         req.Species,
		Variant:         req.Variant,
		InoculationDate: req.InoculationDate,
		SpawnSubstrate:  req.SpawnSubstrate,
		BulkSubstrate:   req.BulkSubstrate,
	}
}

func idParam(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func pageParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	return offset, limit
}
