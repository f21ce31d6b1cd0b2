package cultivation

import (
	"encoding/json"
	"time"
)

// GatewayTypeHomeAssistant is the only gateway integration currently
// supported.
const GatewayTypeHomeAssistant = "home_assistant"

// IoTGateway is a user's bridge to an external automation platform. A
// gateway may be linked to at most one grow.
type IoTGateway struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	APIURL      string    `json:"api_url"`
	APIKey      string    `json:"api_key"`
	IsActive    bool      `json:"is_active"`
	GrowID      *int64    `json:"grow_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IoTEntity is a single enabled entity (sensor, switch, ...) exposed by a
// gateway. Entities can be linked to the gateway's grow for monitoring.
type IoTEntity struct {
	ID             int64           `json:"id"`
	GatewayID      int64           `json:"gateway_id"`
	EntityID       string          `json:"entity_id"` // platform-native id, e.g. "sensor.fruiting_rh"
	EntityType     string          `json:"entity_type"`
	FriendlyName   string          `json:"friendly_name,omitempty"`
	IsEnabled      bool            `json:"is_enabled"`
	LinkedGrowID   *int64          `json:"linked_grow_id,omitempty"`
	LastState      string          `json:"last_state,omitempty"`
	LastAttributes json.RawMessage `json:"last_attributes,omitempty"`
	LastUpdated    *time.Time      `json:"last_updated,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
