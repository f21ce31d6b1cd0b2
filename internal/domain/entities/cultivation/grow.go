// Package cultivation provides the domain entities for mushroom cultivation
// tracking: grows, inventory, teks, templates, calendar tasks, and IoT links.
package cultivation

// Grow is a single mushroom cultivation run owned by a user.
type Grow struct {
	ID              int64  `json:"id"`
	Species         string `json:"species"`
	Variant         string `json:"variant,omitempty"`
	InoculationDate string `json:"inoculation_date,omitempty"` // YYYY-MM-DD
	SpawnSubstrate  string `json:"spawn_substrate,omitempty"`
	BulkSubstrate   string `json:"bulk_substrate,omitempty"`
	UserID          int64  `json:"user_id"`
}
