// Package messaging provides the real-time payment-status broadcaster: the
// session registry, per-session delivery queues, keepalive scheduling, and
// stale-session reclamation behind the SSE endpoint.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is a single outbound SSE event. Events are ephemeral: never
// persisted, never replayed. A session that was not open at broadcast time
// simply never sees the event.
type Event interface {
	// Name returns the SSE event type written on the "event:" line.
	Name() string
	// Encode renders the full wire frame: "event: <type>\ndata: <json>\n\n".
	Encode() (string, error)
}

// ConnectedEvent is emitted once when a session enters streaming.
type ConnectedEvent struct {
	UserID    int64   `json:"user_id"`
	Timestamp float64 `json:"timestamp"`
}

// Name implements Event.
func (e ConnectedEvent) Name() string { return "connected" }

// Encode implements Event.
func (e ConnectedEvent) Encode() (string, error) { return encodeFrame(e.Name(), e) }

// PaymentStatusEvent carries a payment confirmation update produced by the
// webhook handler.
type PaymentStatusEvent struct {
	EventType        string  `json:"event_type"` // always "payment_status"
	PaymentStatus    string  `json:"payment_status"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentIntentID  string  `json:"payment_intent_id"`
	SubscriptionID   *string `json:"subscription_id,omitempty"`
	ConfirmationCode *string `json:"confirmation_code,omitempty"`
	Timestamp        float64 `json:"timestamp"`
	UserID           int64   `json:"user_id"`
}

// Name implements Event.
func (e PaymentStatusEvent) Name() string { return "payment_status" }

// Encode implements Event.
func (e PaymentStatusEvent) Encode() (string, error) { return encodeFrame(e.Name(), e) }

// pingFrame is the keepalive sent when the delivery queue stays empty for a
// full keepalive interval. No payload.
const pingFrame = "event: ping\ndata: {}\n\n"

// encodeFrame renders the two-line SSE wire format terminated by a blank
// line.
func encodeFrame(name string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s event: %w", name, err)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", name, data), nil
}

// unixNow returns the current time as fractional unix seconds, the timestamp
// representation used on the wire.
func unixNow() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
