package cultivation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type TemplateRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewTemplateRepository(db *sql.DB, logger *logging.ChanneledLogger) *TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

const templateColumns = `id, name, description, species, variant, tek_type, difficulty,
	estimated_timeline, tags, spawn_type, spawn_amount, bulk_type, bulk_amount, is_public,
	created_by, environmental_conditions, environmental_sensors, scheduled_actions,
	stage_durations, usage_count, created_at, updated_at`

func (r *TemplateRepository) FindByID(id int64) (*cultivation.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM monotub_tek_templates WHERE id = ?`

	row := r.db.QueryRow(query, id)
	tmpl, err := scanTemplate(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan template", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}
	return tmpl, nil
}

func (r *TemplateRepository) FindPublic(species string, offset, limit int) ([]*cultivation.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM monotub_tek_templates WHERE is_public = 1`
	args := []any{}
	if species != "" {
		query += ` AND species = ?`
		args = append(args, species)
	}
	query += ` ORDER BY usage_count DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return r.queryTemplates(query, args...)
}

func (r *TemplateRepository) FindByCreator(userID int64, offset, limit int) ([]*cultivation.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM monotub_tek_templates WHERE created_by = ?
	          ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryTemplates(query, userID, limit, offset)
}

func (r *TemplateRepository) Store(t *cultivation.Template) error {
	query := `INSERT INTO monotub_tek_templates (name, description, species, variant, tek_type,
	          difficulty, estimated_timeline, tags, spawn_type, spawn_amount, bulk_type,
	          bulk_amount, is_public, created_by, environmental_conditions, environmental_sensors,
	          scheduled_actions, stage_durations, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing template insert", "createdBy", t.CreatedBy, "name", t.Name)

	now := time.Now().UTC()
	result, err := r.db.Exec(query, t.Name, nullable(t.Description), t.Species, nullable(t.Variant),
		t.TekType, nullable(t.Difficulty), t.EstimatedTimeline, rawJSON(t.Tags),
		t.SpawnType, t.SpawnAmount, t.BulkType, t.BulkAmount, t.IsPublic, t.CreatedBy,
		rawJSON(t.EnvironmentalConditions), rawJSON(t.EnvironmentalSensors),
		rawJSON(t.ScheduledActions), rawJSON(t.StageDurations), now, now)
	if err != nil {
		r.logger.Database().Error("Template insert failed", "error", err.Error(), "name", t.Name)
		return fmt.Errorf("failed to insert template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read template id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now

	duration := time.Since(start)
	r.logger.Database().Info("Template insert completed", "id", t.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *TemplateRepository) Update(t *cultivation.Template) error {
	query := `UPDATE monotub_tek_templates SET name = ?, description = ?, species = ?, variant = ?,
	          tek_type = ?, difficulty = ?, estimated_timeline = ?, tags = ?, spawn_type = ?,
	          spawn_amount = ?, bulk_type = ?, bulk_amount = ?, is_public = ?,
	          environmental_conditions = ?, environmental_sensors = ?, scheduled_actions = ?,
	          stage_durations = ?, updated_at = ? WHERE id = ?`

	start := time.Now()
	now := time.Now().UTC()
	_, err := r.db.Exec(query, t.Name, nullable(t.Description), t.Species, nullable(t.Variant),
		t.TekType, nullable(t.Difficulty), t.EstimatedTimeline, rawJSON(t.Tags),
		t.SpawnType, t.SpawnAmount, t.BulkType, t.BulkAmount, t.IsPublic,
		rawJSON(t.EnvironmentalConditions), rawJSON(t.EnvironmentalSensors),
		rawJSON(t.ScheduledActions), rawJSON(t.StageDurations), now, t.ID)
	if err != nil {
		r.logger.Database().Error("Template update failed", "error", err.Error(), "id", t.ID)
		return fmt.Errorf("failed to update template: %w", err)
	}
	t.UpdatedAt = now

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *TemplateRepository) Delete(id int64) error {
	query := `DELETE FROM monotub_tek_templates WHERE id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Database().Error("Template delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete template: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *TemplateRepository) IncrementUsageCount(id int64) error {
	_, err := r.db.Exec(`UPDATE monotub_tek_templates SET usage_count = usage_count + 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.Database().Error("Template usage counter update failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to update template usage counter: %w", err)
	}
	return nil
}

func (r *TemplateRepository) queryTemplates(query string, args ...any) ([]*cultivation.Template, error) {
	start := time.Now()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to query templates", "error", err.Error())
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	templates := []*cultivation.Template{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return templates, rows.Err()
}

func scanTemplate(scan func(dest ...any) error) (*cultivation.Template, error) {
	var t cultivation.Template
	var description, variant, difficulty sql.NullString
	var tags, conditions, sensors, actions, durations sql.NullString

	err := scan(&t.ID, &t.Name, &description, &t.Species, &variant, &t.TekType, &difficulty,
		&t.EstimatedTimeline, &tags, &t.SpawnType, &t.SpawnAmount, &t.BulkType, &t.BulkAmount,
		&t.IsPublic, &t.CreatedBy, &conditions, &sensors, &actions, &durations,
		&t.UsageCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	t.Variant = variant.String
	t.Difficulty = difficulty.String
	if tags.Valid {
		t.Tags = []byte(tags.String)
	}
	if conditions.Valid {
		t.EnvironmentalConditions = []byte(conditions.String)
	}
	if sensors.Valid {
		t.EnvironmentalSensors = []byte(sensors.String)
	}
	if actions.Valid {
		t.ScheduledActions = []byte(actions.String)
	}
	if durations.Valid {
		t.StageDurations = []byte(durations.String)
	}
	return &t, nil
}
