package cultivation

// Inventory item types. The consolidated model stores type-specific fields
// on one row; irrelevant fields stay null.
const (
	ItemTypeSyringe = "Syringe"
	ItemTypeSpawn   = "Spawn"
	ItemTypeBulk    = "Bulk"
	ItemTypeOther   = "Other"
)

// Syringe subtypes.
const (
	SyringeTypeSpore         = "spore syringe"
	SyringeTypeLiquidCulture = "liquid culture"
)

// InventoryItem is a consumable cultivation supply. An item linked to a grow
// is marked in-use and is protected from mutation and deletion.
type InventoryItem struct {
	ID             int64    `json:"id"`
	Type           string   `json:"type"`
	Source         string   `json:"source,omitempty"`
	SourceDate     string   `json:"source_date"` // YYYY-MM-DD
	ExpirationDate string   `json:"expiration_date,omitempty"`
	Cost           *float64 `json:"cost,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	InUse          bool     `json:"in_use"`
	UserID         int64    `json:"user_id"`
	GrowID         *int64   `json:"grow_id,omitempty"`

	// Syringe-specific fields
	SyringeType string   `json:"syringe_type,omitempty"`
	VolumeML    *float64 `json:"volume_ml,omitempty"`
	Species     string   `json:"species,omitempty"`
	Variant     string   `json:"variant,omitempty"`

	// Spawn-specific fields
	SpawnType string `json:"spawn_type,omitempty"`

	// Bulk-specific fields
	BulkType string `json:"bulk_type,omitempty"`

	// Shared by Spawn and Bulk
	AmountLbs *float64 `json:"amount_lbs,omitempty"`
}

// IsAvailable reports whether the item can be assigned to a grow.
func (i *InventoryItem) IsAvailable() bool {
	return !i.InUse
}
