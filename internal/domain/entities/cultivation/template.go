package cultivation

import (
	"encoding/json"
	"time"
)

// Template is a monotub tek template: a parameterized recipe a grow can be
// instantiated from. JSON columns hold the flexible environmental and
// scheduling structures.
type Template struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Species           string          `json:"species"`
	Variant           string          `json:"variant,omitempty"`
	TekType           string          `json:"tek_type"`
	Difficulty        string          `json:"difficulty,omitempty"`
	EstimatedTimeline *int64          `json:"estimated_timeline,omitempty"` // days
	Tags              json.RawMessage `json:"tags,omitempty"`

	// Required user inputs
	SpawnType  string  `json:"spawn_type"`
	SpawnAmount float64 `json:"spawn_amount"` // lbs
	BulkType   string  `json:"bulk_type"`
	BulkAmount float64 `json:"bulk_amount"` // lbs

	IsPublic  bool      `json:"is_public"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EnvironmentalConditions json.RawMessage `json:"environmental_conditions,omitempty"`
	EnvironmentalSensors    json.RawMessage `json:"environmental_sensors,omitempty"`
	ScheduledActions        json.RawMessage `json:"scheduled_actions,omitempty"`
	StageDurations          json.RawMessage `json:"stage_durations,omitempty"`

	UsageCount int64 `json:"usage_count"`
}

// DefaultTekType is the only tek type the template catalog ships with.
const DefaultTekType = "monotub_bulk"

// VisibleTo reports whether the template may be read by the given user.
func (t *Template) VisibleTo(userID int64) bool {
	return t.IsPublic || t.CreatedBy == userID
}
