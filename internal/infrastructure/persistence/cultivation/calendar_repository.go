package cultivation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type CalendarRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewCalendarRepository(db *sql.DB, logger *logging.ChanneledLogger) *CalendarRepository {
	return &CalendarRepository{
		db:     db,
		logger: logger,
	}
}

const calendarColumns = `t.id, t.parent_task_id, t.grow_id, t.action, t.stage_key, t.date,
	t.time, t.status, t.created_at, t.updated_at`

// Calendar tasks carry no user column of their own; ownership flows through
// the grow, so every query joins against grows.

func (r *CalendarRepository) FindByID(userID, id int64) (*cultivation.CalendarTask, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_tasks t
	          JOIN grows g ON g.id = t.grow_id WHERE t.id = ? AND g.user_id = ?`

	row := r.db.QueryRow(query, id, userID)
	task, err := scanCalendarTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan calendar task", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan calendar task: %w", err)
	}
	return task, nil
}

func (r *CalendarRepository) FindAll(userID int64, growID *int64) ([]*cultivation.CalendarTask, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_tasks t
	          JOIN grows g ON g.id = t.grow_id WHERE g.user_id = ?`
	args := []any{userID}
	if growID != nil {
		query += ` AND t.grow_id = ?`
		args = append(args, *growID)
	}
	query += ` ORDER BY t.date, t.time`

	start := time.Now()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to query calendar tasks", "error", err.Error(), "userId", userID)
		return nil, fmt.Errorf("failed to query calendar tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*cultivation.CalendarTask{}
	for rows.Next() {
		task, err := scanCalendarTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar task: %w", err)
		}
		tasks = append(tasks, task)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return tasks, rows.Err()
}

func (r *CalendarRepository) Store(task *cultivation.CalendarTask) error {
	query := `INSERT INTO calendar_tasks (parent_task_id, grow_id, action, stage_key, date, time,
	          status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	now := time.Now().UTC()
	result, err := r.db.Exec(query, task.ParentTaskID, task.GrowID, task.Action, task.StageKey,
		task.Date, task.Time, task.Status, now, now)
	if err != nil {
		r.logger.Database().Error("Calendar task insert failed", "error", err.Error(), "growId", task.GrowID)
		return fmt.Errorf("failed to insert calendar task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read calendar task id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// StoreBulk inserts a batch of generated task instances in one transaction so
// a tek import either schedules every task or none.
func (r *CalendarRepository) StoreBulk(tasks []*cultivation.CalendarTask) error {
	if len(tasks) == 0 {
		return nil
	}

	start := time.Now()
	r.logger.Database().Debug("Executing bulk calendar insert", "count", len(tasks))

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin calendar transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO calendar_tasks (parent_task_id, grow_id, action, stage_key, date, time,
	          status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare calendar insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, task := range tasks {
		result, err := stmt.Exec(task.ParentTaskID, task.GrowID, task.Action, task.StageKey,
			task.Date, task.Time, task.Status, now, now)
		if err != nil {
			r.logger.Database().Error("Bulk calendar insert failed", "error", err.Error(), "growId", task.GrowID)
			return fmt.Errorf("failed to insert calendar task: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read calendar task id: %w", err)
		}
		task.ID = id
		task.CreatedAt = now
		task.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit calendar transaction: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Bulk calendar insert completed", "count", len(tasks), "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *CalendarRepository) Update(task *cultivation.CalendarTask) error {
	query := `UPDATE calendar_tasks SET action = ?, stage_key = ?, date = ?, time = ?, status = ?,
	          updated_at = ? WHERE id = ?`

	start := time.Now()
	now := time.Now().UTC()
	_, err := r.db.Exec(query, task.Action, task.StageKey, task.Date, task.Time, task.Status, now, task.ID)
	if err != nil {
		r.logger.Database().Error("Calendar task update failed", "error", err.Error(), "id", task.ID)
		return fmt.Errorf("failed to update calendar task: %w", err)
	}
	task.UpdatedAt = now

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *CalendarRepository) Delete(userID, id int64) error {
	query := `DELETE FROM calendar_tasks WHERE id = ? AND grow_id IN
	          (SELECT id FROM grows WHERE user_id = ?)`

	start := time.Now()
	_, err := r.db.Exec(query, id, userID)
	if err != nil {
		r.logger.Database().Error("Calendar task delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete calendar task: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// DeleteByParentTask removes every instance generated from one tek stage task
// and reports how many rows went away.
func (r *CalendarRepository) DeleteByParentTask(userID int64, parentTaskID string) (int64, error) {
	query := `DELETE FROM calendar_tasks WHERE parent_task_id = ? AND grow_id IN
	          (SELECT id FROM grows WHERE user_id = ?)`

	start := time.Now()
	result, err := r.db.Exec(query, parentTaskID, userID)
	if err != nil {
		r.logger.Database().Error("Calendar parent delete failed", "error", err.Error(), "parentTaskId", parentTaskID)
		return 0, fmt.Errorf("failed to delete calendar tasks: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return deleted, nil
}

func (r *CalendarRepository) OwnsGrow(userID, growID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM grows WHERE id = ? AND user_id = ?)`,
		growID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check grow ownership: %w", err)
	}
	return exists, nil
}

func scanCalendarTask(scan func(dest ...any) error) (*cultivation.CalendarTask, error) {
	var t cultivation.CalendarTask
	err := scan(&t.ID, &t.ParentTaskID, &t.GrowID, &t.Action, &t.StageKey, &t.Date, &t.Time,
		&t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
