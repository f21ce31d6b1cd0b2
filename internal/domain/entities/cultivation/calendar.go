package cultivation

import "time"

// Calendar task status values.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// CalendarTask is a dated task instance created from a tek stage task
// template and attached to a grow.
type CalendarTask struct {
	ID           int64     `json:"id"`
	ParentTaskID string    `json:"parent_task_id"` // UUID of the tek stage task
	GrowID       int64     `json:"grow_id"`
	Action       string    `json:"action"`
	StageKey     string    `json:"stage_key"` // e.g. "inoculation", "spawn_colonization"
	Date         string    `json:"date"`      // YYYY-MM-DD
	Time         string    `json:"time"`      // HH:mm
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
