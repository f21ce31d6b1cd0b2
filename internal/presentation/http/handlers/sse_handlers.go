package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mycomize/mycomize-go/internal/application/services"
	"github.com/mycomize/mycomize-go/internal/infrastructure/messaging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/performance"
	"github.com/mycomize/mycomize-go/pkg/config"
)

// SSEHandlers contains the payment-status stream HTTP handlers.
type SSEHandlers struct {
	authService *services.AuthService
	broadcaster *messaging.SSEBroadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSSEHandlers creates SSE handlers with injected dependencies.
func NewSSEHandlers(authService *services.AuthService, broadcaster *messaging.SSEBroadcaster,
	logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SSEHandlers {
	return &SSEHandlers{
		authService: authService,
		broadcaster: broadcaster,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// flushSink adapts the response writer into the session's delivery sink,
// flushing after every frame so events reach the client immediately.
type flushSink struct {
	w io.Writer
	f http.Flusher
}

func (s *flushSink) Send(frame string) error {
	if _, err := io.WriteString(s.w, frame); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// StreamPaymentStatus handles GET /api/v1/payments/stream - establishes the
// Server-Sent Events connection. EventSource cannot set headers, so the
// access token arrives as a query parameter.
func (h *SSEHandlers) StreamPaymentStatus(c *gin.Context) {
	marker := h.perfTracker.StartOperation("sse_stream_request")
	defer marker.Complete()
	h.logger.SSE().Debug("Received SSE connection request", "method", c.Request.Method, "path", c.Request.URL.Path)

	token := c.Query("token")
	if token == "" {
		token, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required for SSE connection"})
		return
	}

	u, err := h.authService.ValidateToken(token)
	if err != nil {
		h.logger.SSE().Warn("SSE connection rejected", "error", err.Error())
		marker.SetError(err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	session := h.broadcaster.Register(u.ID)
	if session == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "SSE connection limit reached. Please try again later.",
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for SSE stream request", "duration", marker.Duration, "success", true)

	connectionStart := time.Now()
	runErr := session.Run(c.Request.Context(), &flushSink{w: c.Writer, f: flusher}, config.SSEKeepaliveInterval)

	if runErr != nil {
		h.logger.SSE().Info("SSE connection ended with write failure",
			"userId", u.ID, "error", runErr.Error(),
			"connectionDuration", time.Since(connectionStart))
		return
	}
	h.logger.SSE().Info("SSE client disconnected",
		"userId", u.ID, "connectionDuration", time.Since(connectionStart))
}

// Health handles GET /api/v1/payments/stream/health - registry counters for
// monitoring.
func (h *SSEHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"activeConnections": h.broadcaster.ConnectionCount(),
		"connectedUsers":    h.broadcaster.UserCount(),
		"maxConnections":    config.MaxSSEConnections,
	})
}
