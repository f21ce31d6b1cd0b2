package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/internal/presentation/http/middleware"
	"github.com/mycomize/mycomize-go/pkg/config"
)

// CreateIntentRequest is the body for opening a payment intent.
type CreateIntentRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// PaymentHandlers contains the payment, order, and webhook HTTP handlers.
type PaymentHandlers struct {
	paymentService *services.PaymentService
	orderService   *services.OrderService
	webhookService *services.WebhookService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewPaymentHandlers creates payment handlers with injected dependencies.
func NewPaymentHandlers(paymentService *services.PaymentService, orderService *services.OrderService,
	webhookService *services.WebhookService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService: paymentService,
		orderService:   orderService,
		webhookService: webhookService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// ListPlans handles GET /api/v1/payments/plans
func (h *PaymentHandlers) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.paymentService.Plans())
}

// CreateIntent handles POST /api/v1/payments/intent
func (h *PaymentHandlers) CreateIntent(c *gin.Context) {
	start := time.Now()
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.paymentService.CreatePaymentIntent(u.ID, req.PlanID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Payment().Info("Create intent request completed", "userId", u.ID, "duration", time.Since(start))
	c.JSON(http.StatusOK, result)
}

// GetStatus handles GET /api/v1/payments/status. The polled fallback for
// clients without an open payment-status stream.
func (h *PaymentHandlers) GetStatus(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	status, err := h.paymentService.Status(u.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetConfig handles GET /api/v1/payments/config. Public: the publishable key
// is meant for the browser.
func (h *PaymentHandlers) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publishable_key": config.StripePublishableKey})
}

// ListOrders handles GET /api/v1/orders
func (h *PaymentHandlers) ListOrders(c *gin.Context) {
	u, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	offset, limit := pageParams(c)
	page, err := h.orderService.List(u.ID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// StripeWebhook handles POST /api/v1/payments/webhook. Unauthenticated:
// trust comes from the Stripe-Signature header, verified downstream.
func (h *PaymentHandlers) StripeWebhook(c *gin.Context) {
	start := time.Now()
	h.logger.Payment().Debug("Received webhook", "path", c.Request.URL.Path)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	if err := h.webhookService.HandleEvent(payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}

	h.logger.Payment().Info("Webhook processed", "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"received": true})
}
