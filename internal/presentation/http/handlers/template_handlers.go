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

// InstantiateGrowRequest is the body for creating a grow from a template.
type InstantiateGrowRequest struct {
	InoculationDate string `json:"inoculation_date"`
}

// TemplateHandlers contains the template HTTP handlers.
type TemplateHandlers struct {
	templateService *services.TemplateService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewTemplateHandlers creates template handlers with injected dependencies.
func NewTemplateHandlers(templateService *services.TemplateService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TemplateHandlers {
	return &TemplateHandlers{
		templateService: templateService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// ListTemplates handles GET /api/v1/templates
func (h *TemplateHandlers) ListTemplates(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	offset, limit := pageParams(c)

	var (
		templates []*cultivation.Template
		err       error
	)
	if c.Query("mine") == "true" {
		templates, err = h.templateService.ListMine(u.ID, offset, limit)
	} else {
		templates, err = h.templateService.ListPublic(c.Query("species"), offset, limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate handles GET /api/v1/templates/:id
func (h *TemplateHandlers) GetTemplate(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	t, err := h.templateService.GetByID(u.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CreateTemplate handles POST /api/v1/templates
func (h *TemplateHandlers) CreateTemplate(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	marker := h.perfTracker.StartOperation("create_template_request")
	defer marker.Complete()

	var t cultivation.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, err := h.templateService.Create(u.ID, &t)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, created)
}

// UpdateTemplate handles PUT /api/v1/templates/:id
func (h *TemplateHandlers) UpdateTemplate(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var t cultivation.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.templateService.Update(u.ID, id, &t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTemplate handles DELETE /api/v1/templates/:id
func (h *TemplateHandlers) DeleteTemplate(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	if err := h.templateService.Delete(u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateFromGrow handles POST /api/v1/templates/from-grow/:growId
func (h *TemplateHandlers) CreateFromGrow(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	growID, err := idParam(c, "growId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grow id"})
		return
	}

	var t cultivation.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, err := h.templateService.CreateFromGrow(u.ID, growID, &t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// InstantiateGrow handles POST /api/v1/templates/:id/grows
func (h *TemplateHandlers) InstantiateGrow(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var req InstantiateGrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	g, err := h.templateService.InstantiateGrow(u.ID, id, req.InoculationDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}
