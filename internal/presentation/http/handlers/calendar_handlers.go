package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/presentation/http/middleware"
)

// CalendarBatchRequest is the body for bulk task scheduling.
type CalendarBatchRequest struct {
	Tasks []*cultivation.CalendarTask `json:"tasks" binding:"required"`
}

// CalendarHandlers contains the calendar HTTP handlers.
type CalendarHandlers struct {
	calendarService *services.CalendarService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewCalendarHandlers creates calendar handlers with injected dependencies.
func NewCalendarHandlers(calendarService *services.CalendarService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CalendarHandlers {
	return &CalendarHandlers{
		calendarService: calendarService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// ListTasks handles GET /api/v1/calendar/tasks
func (h *CalendarHandlers) ListTasks(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var growID *int64
	if raw := c.Query("grow_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grow id"})
			return
		}
		growID = &id
	}

	tasks, err := h.calendarService.List(u.ID, growID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask handles POST /api/v1/calendar/tasks
func (h *CalendarHandlers) CreateTask(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var task cultivation.CalendarTask
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, err := h.calendarService.Create(u.ID, &task)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// CreateTaskBatch handles POST /api/v1/calendar/tasks/batch
func (h *CalendarHandlers) CreateTaskBatch(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	marker := h.perfTracker.StartOperation("calendar_batch_request")
	defer marker.Complete()

	var req CalendarBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	tasks, err := h.calendarService.CreateBatch(u.ID, req.Tasks)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Cultivation().Info("Calendar batch created", "count", len(tasks), "userId", u.ID)
	c.JSON(http.StatusCreated, tasks)
}

// UpdateTask handles PUT /api/v1/calendar/tasks/:id
func (h *CalendarHandlers) UpdateTask(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var task cultivation.CalendarTask
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.calendarService.Update(u.ID, id, &task)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTask handles DELETE /api/v1/calendar/tasks/:id
func (h *CalendarHandlers) DeleteTask(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := h.calendarService.Delete(u.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteByParentTask handles DELETE /api/v1/calendar/tasks/parent/:parentTaskId
func (h *CalendarHandlers) DeleteByParentTask(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	deleted, err := h.calendarService.DeleteByParentTask(u.ID, c.Param("parentTaskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
