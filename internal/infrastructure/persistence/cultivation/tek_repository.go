package cultivation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type TekRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewTekRepository(db *sql.DB, logger *logging.ChanneledLogger) *TekRepository {
	return &TekRepository{
		db:     db,
		logger: logger,
	}
}

const tekColumns = `id, created_by, is_public, name, description, species, variant, tags,
	stages, like_count, view_count, import_count, created_at, updated_at`

func (r *TekRepository) FindByID(id int64) (*cultivation.Tek, error) {
	query := `SELECT ` + tekColumns + ` FROM bulk_grow_teks WHERE id = ?`

	row := r.db.QueryRow(query, id)
	tek, err := scanTek(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan tek", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan tek: %w", err)
	}
	return tek, nil
}

func (r *TekRepository) FindPublic(offset, limit int) ([]*cultivation.Tek, error) {
	query := `SELECT ` + tekColumns + ` FROM bulk_grow_teks WHERE is_public = 1
	          ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryTeks(query, limit, offset)
}

func (r *TekRepository) FindByCreator(userID int64, offset, limit int) ([]*cultivation.Tek, error) {
	query := `SELECT ` + tekColumns + ` FROM bulk_grow_teks WHERE created_by = ?
	          ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryTeks(query, userID, limit, offset)
}

// FindVisible lists every tek the user may read: public ones plus their own
// private ones.
func (r *TekRepository) FindVisible(userID int64, offset, limit int) ([]*cultivation.Tek, error) {
	query := `SELECT ` + tekColumns + ` FROM bulk_grow_teks WHERE is_public = 1 OR created_by = ?
	          ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryTeks(query, userID, limit, offset)
}

func (r *TekRepository) Store(t *cultivation.Tek) error {
	query := `INSERT INTO bulk_grow_teks (created_by, is_public, name, description, species,
	          variant, tags, stages, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing tek insert", "createdBy", t.CreatedBy, "name", t.Name)

	now := time.Now().UTC()
	result, err := r.db.Exec(query, t.CreatedBy, t.IsPublic, t.Name, nullable(t.Description),
		t.Species, nullable(t.Variant), nullable(t.Tags), rawJSON(t.Stages), now, now)
	if err != nil {
		r.logger.Database().Error("Tek insert failed", "error", err.Error(), "name", t.Name)
		return fmt.Errorf("failed to insert tek: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read tek id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now

	duration := time.Since(start)
	r.logger.Database().Info("Tek insert completed", "id", t.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *TekRepository) Update(t *cultivation.Tek) error {
	query := `UPDATE bulk_grow_teks SET is_public = ?, name = ?, description = ?, species = ?,
	          variant = ?, tags = ?, stages = ?, updated_at = ? WHERE id = ?`

	start := time.Now()
	now := time.Now().UTC()
	_, err := r.db.Exec(query, t.IsPublic, t.Name, nullable(t.Description), t.Species,
		nullable(t.Variant), nullable(t.Tags), rawJSON(t.Stages), now, t.ID)
	if err != nil {
		r.logger.Database().Error("Tek update failed", "error", err.Error(), "id", t.ID)
		return fmt.Errorf("failed to update tek: %w", err)
	}
	t.UpdatedAt = now

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *TekRepository) Delete(id int64) error {
	query := `DELETE FROM bulk_grow_teks WHERE id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Database().Error("Tek delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete tek: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *TekRepository) IncrementViewCount(id int64) error {
	return r.increment(`UPDATE bulk_grow_teks SET view_count = view_count + 1 WHERE id = ?`, id)
}

func (r *TekRepository) IncrementImportCount(id int64) error {
	return r.increment(`UPDATE bulk_grow_teks SET import_count = import_count + 1 WHERE id = ?`, id)
}

func (r *TekRepository) increment(query string, id int64) error {
	_, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Database().Error("Tek counter update failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to update tek counter: %w", err)
	}
	return nil
}

func (r *TekRepository) queryTeks(query string, args ...any) ([]*cultivation.Tek, error) {
	start := time.Now()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to query teks", "error", err.Error())
		return nil, fmt.Errorf("failed to query teks: %w", err)
	}
	defer rows.Close()

	teks := []*cultivation.Tek{}
	for rows.Next() {
		tek, err := scanTek(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tek: %w", err)
		}
		teks = append(teks, tek)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return teks, rows.Err()
}

func scanTek(scan func(dest ...any) error) (*cultivation.Tek, error) {
	var t cultivation.Tek
	var description, variant, tags, stages sql.NullString

	err := scan(&t.ID, &t.CreatedBy, &t.IsPublic, &t.Name, &description, &t.Species, &variant,
		&tags, &stages, &t.LikeCount, &t.ViewCount, &t.ImportCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	t.Variant = variant.String
	t.Tags = tags.String
	if stages.Valid {
		t.Stages = []byte(stages.String)
	}
	return &t, nil
}

// rawJSON maps empty JSON payloads to SQL NULL and stores the rest as text.
func rawJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
