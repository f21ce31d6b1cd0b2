package cultivation

import (
	"encoding/json"
	"time"
)

// Tek is a shareable bulk-grow technique. Public teks are visible to every
// user; private teks only to their creator.
type Tek struct {
	ID          int64           `json:"id"`
	CreatedBy   int64           `json:"created_by"`
	IsPublic    bool            `json:"is_public"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Species     string          `json:"species"`
	Variant     string          `json:"variant,omitempty"`
	Tags        string          `json:"tags,omitempty"`
	Stages      json.RawMessage `json:"stages,omitempty"` // stage-keyed items/conditions/tasks/notes
	LikeCount   int64           `json:"like_count"`
	ViewCount   int64           `json:"view_count"`
	ImportCount int64           `json:"import_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// VisibleTo reports whether the tek may be read by the given user.
func (t *Tek) VisibleTo(userID int64) bool {
	return t.IsPublic || t.CreatedBy == userID
}
