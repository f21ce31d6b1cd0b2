package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/presentation/http/middleware"
)

// InventoryHandlers contains the inventory HTTP handlers.
type InventoryHandlers struct {
	inventoryService *services.InventoryService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewInventoryHandlers creates inventory handlers with injected dependencies.
func NewInventoryHandlers(inventoryService *services.InventoryService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *InventoryHandlers {
	return &InventoryHandlers{
		inventoryService: inventoryService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// ListItems handles GET /api/v1/inventory
func (h *InventoryHandlers) ListItems(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	offset, limit := pageParams(c)
	filter := repositories.InventoryFilter{
		AvailableOnly: c.Query("available") == "true",
		ItemType:      c.Query("type"),
		Offset:        offset,
		Limit:         limit,
	}

	items, err := h.inventoryService.List(u.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListAvailable handles GET /api/v1/inventory/available
func (h *InventoryHandlers) ListAvailable(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	grouped, err := h.inventoryService.ListAvailable(u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

// GetItem handles GET /api/v1/inventory/:id
func (h *InventoryHandlers) GetItem(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory item id"})
		return
	}

	item, err := h.inventoryService.GetByID(u.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem handles POST /api/v1/inventory
func (h *InventoryHandlers) CreateItem(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	marker := h.perfTracker.StartOperation("create_inventory_request")
	defer marker.Complete()

	var item cultivation.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, err := h.inventoryService.Create(u.ID, &item)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Inventory().Info("Inventory item created", "itemId", created.ID, "type", created.Type)
	c.JSON(http.StatusCreated, created)
}

// UpdateItem handles PUT /api/v1/inventory/:id
func (h *InventoryHandlers) UpdateItem(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory item id"})
		return
	}

	var item cultivation.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.inventoryService.Update(u.ID, id, &item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/v1/inventory/:id
func (h *InventoryHandlers) DeleteItem(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory item id"})
		return
	}

	if err := h.inventoryService.Delete(u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
