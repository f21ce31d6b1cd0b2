package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/presentation/http/middleware"
)

// IoTHandlers contains the gateway and entity HTTP handlers.
type IoTHandlers struct {
	iotService  *services.IoTService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewIoTHandlers creates IoT handlers with injected dependencies.
func NewIoTHandlers(iotService *services.IoTService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *IoTHandlers {
	return &IoTHandlers{
		iotService:  iotService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ListGateways handles GET /api/v1/iot-gateways
func (h *IoTHandlers) ListGateways(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	offset, limit := pageParams(c)
	gateways, err := h.iotService.ListGateways(u.ID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gateways)
}

// GetGateway handles GET /api/v1/iot-gateways/:id
func (h *IoTHandlers) GetGateway(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}

	gw, err := h.iotService.GetGateway(u.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gw)
}

// CreateGateway handles POST /api/v1/iot-gateways
func (h *IoTHandlers) CreateGateway(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var gw cultivation.IoTGateway
	if err := c.ShouldBindJSON(&gw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, err := h.iotService.CreateGateway(u.ID, &gw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateGateway handles PUT /api/v1/iot-gateways/:id
func (h *IoTHandlers) UpdateGateway(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}

	var gw cultivation.IoTGateway
	if err := c.ShouldBindJSON(&gw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.iotService.UpdateGateway(u.ID, id, &gw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteGateway handles DELETE /api/v1/iot-gateways/:id
func (h *IoTHandlers) DeleteGateway(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}

	if err := h.iotService.DeleteGateway(u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListEntities handles GET /api/v1/iot-gateways/:id/entities
func (h *IoTHandlers) ListEntities(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	gatewayID, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}

	entities, err := h.iotService.ListEntities(u.ID, gatewayID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entities)
}

// CreateEntity handles POST /api/v1/iot-gateways/:id/entities
func (h *IoTHandlers) CreateEntity(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	gatewayID, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}

	var e cultivation.IoTEntity
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, err := h.iotService.CreateEntity(u.ID, gatewayID, &e)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateEntity handles PUT /api/v1/iot-gateways/:id/entities/:entityId
func (h *IoTHandlers) UpdateEntity(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	gatewayID, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}
	entityID, err := idParam(c, "entityId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
		return
	}

	var e cultivation.IoTEntity
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.iotService.UpdateEntity(u.ID, gatewayID, entityID, &e)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// LinkEntityRequest is the body for linking an entity to a grow.
type LinkEntityRequest struct {
	GrowID int64 `json:"grow_id" binding:"required"`
}

// LinkEntity handles POST /api/v1/iot-gateways/:id/entities/:entityId/link
func (h *IoTHandlers) LinkEntity(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	gatewayID, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}
	entityID, err := idParam(c, "entityId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
		return
	}

	var req LinkEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	linked, err := h.iotService.LinkEntity(u.ID, gatewayID, entityID, req.GrowID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, linked)
}

// UnlinkEntity handles DELETE /api/v1/iot-gateways/:id/entities/:entityId/link
func (h *IoTHandlers) UnlinkEntity(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	gatewayID, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}
	entityID, err := idParam(c, "entityId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
		return
	}

	unlinked, err := h.iotService.UnlinkEntity(u.ID, gatewayID, entityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unlinked)
}

// DeleteEntity handles DELETE /api/v1/iot-gateways/:id/entities/:entityId
func (h *IoTHandlers) DeleteEntity(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	gatewayID, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gateway id"})
		return
	}
	entityID, err := idParam(c, "entityId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity id"})
		return
	}

	if err := h.iotService.DeleteEntity(u.ID, gatewayID, entityID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
