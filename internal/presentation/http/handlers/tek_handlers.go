package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/presentation/http/middleware"
)

// TekRequest is the create/update request body for teks.
type TekRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Species     string          `json:"species" binding:"required"`
	Variant     string          `json:"variant"`
	Tags        string          `json:"tags"`
	IsPublic    bool            `json:"is_public"`
	Stages      json.RawMessage `json:"stages"`
}

// TekHandlers contains the tek HTTP handlers.
type TekHandlers struct {
	tekService  *services.TekService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewTekHandlers creates tek handlers with injected dependencies.
func NewTekHandlers(tekService *services.TekService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TekHandlers {
	return &TekHandlers{
		tekService:  tekService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ListTeks handles GET /api/v1/teks
func (h *TekHandlers) ListTeks(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	offset, limit := pageParams(c)

	var (
		teks []*cultivation.Tek
		err  error
	)
	if c.Query("mine") == "true" {
		teks, err = h.tekService.ListMine(u.ID, offset, limit)
	} else {
		teks, err = h.tekService.List(u.ID, offset, limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, teks)
}

// GetTek handles GET /api/v1/teks/:id
func (h *TekHandlers) GetTek(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tek id"})
		return
	}

	t, err := h.tekService.GetByID(u.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CreateTek handles POST /api/v1/teks
func (h *TekHandlers) CreateTek(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	marker := h.perfTracker.StartOperation("create_tek_request")
	defer marker.Complete()

	var req TekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	t, err := h.tekService.Create(u.ID, tekFromRequest(&req))
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, t)
}

// UpdateTek handles PUT /api/v1/teks/:id
func (h *TekHandlers) UpdateTek(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tek id"})
		return
	}

	var req TekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	t, err := h.tekService.Update(u.ID, id, tekFromRequest(&req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTek handles DELETE /api/v1/teks/:id
func (h *TekHandlers) DeleteTek(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tek id"})
		return
	}

	if err := h.tekService.Delete(u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportTek handles POST /api/v1/teks/:id/import
func (h *TekHandlers) ImportTek(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tek id"})
		return
	}

	if err := h.tekService.RecordImport(u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": true})
}

func tekFromRequest(req *TekRequest) *cultivation.Tek {
	return &cultivation.Tek{
		Name:        req.Name,
		Description: req.Description,
		Species:     req.Species,
		Variant:     req.Variant,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic,
		Stages:      req.Stages,
	}
}
