// Package cultivation provides repositories for grows, inventory, teks,
// templates, calendar tasks, and IoT gateways.
package cultivation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type GrowRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewGrowRepository(db *sql.DB, logger *logging.ChanneledLogger) *GrowRepository {
	return &GrowRepository{
		db:     db,
		logger: logger,
	}
}

func (r *GrowRepository) FindByID(userID, id int64) (*cultivation.Grow, error) {
	query := `SELECT id, species, variant, inoculation_date, spawn_substrate, bulk_substrate, user_id
	          FROM grows WHERE id = ? AND user_id = ?`

	row := r.db.QueryRow(query, id, userID)

	var g cultivation.Grow
	var variant, inoculationDate, spawnSubstrate, bulkSubstrate sql.NullString
	err := row.Scan(&g.ID, &g.Species, &variant, &inoculationDate, &spawnSubstrate, &bulkSubstrate, &g.UserID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan grow", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan grow: %w", err)
	}

	g.Variant = variant.String
	g.InoculationDate = inoculationDate.String
	g.SpawnSubstrate = spawnSubstrate.String
	g.BulkSubstrate = bulkSubstrate.String
	return &g, nil
}

func (r *GrowRepository) FindAll(userID int64, offset, limit int) ([]*cultivation.Grow, error) {
	query := `SELECT id, species, variant, inoculation_date, spawn_substrate, bulk_substrate, user_id
	          FROM grows WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`

	start := time.Now()
	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		r.logger.Database().Error("Failed to query grows", "error", err.Error(), "userId", userID)
		return nil, fmt.Errorf("failed to query grows: %w", err)
	}
	defer rows.Close()

	grows := []*cultivation.Grow{}
	for rows.Next() {
		var g cultivation.Grow
		var variant, inoculationDate, spawnSubstrate, bulkSubstrate sql.NullString
		if err := rows.Scan(&g.ID, &g.Species, &variant, &inoculationDate, &spawnSubstrate, &bulkSubstrate, &g.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan grow: %w", err)
		}
		g.Variant = variant.String
		g.InoculationDate = inoculationDate.String
		g.SpawnSubstrate = spawnSubstrate.String
		g.BulkSubstrate = bulkSubstrate.String
		grows = append(grows, &g)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return grows, rows.Err()
}

func (r *GrowRepository) Store(g *cultivation.Grow) error {
	query := `INSERT INTO grows (species, variant, inoculation_date, spawn_substrate, bulk_substrate, user_id)
	          VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing grow insert", "userId", g.UserID, "species", g.Species)

	result, err := r.db.Exec(query, g.Species, nullable(g.Variant), nullable(g.InoculationDate),
		nullable(g.SpawnSubstrate), nullable(g.BulkSubstrate), g.UserID)
	if err != nil {
		r.logger.Database().Error("Grow insert failed", "error", err.Error(), "userId", g.UserID)
		return fmt.Errorf("failed to insert grow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read grow id: %w", err)
	}
	g.ID = id

	duration := time.Since(start)
	r.logger.Database().Info("Grow insert completed", "id", g.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *GrowRepository) Update(g *cultivation.Grow) error {
	query := `UPDATE grows SET species = ?, variant = ?, inoculation_date = ?,
	          spawn_substrate = ?, bulk_substrate = ? WHERE id = ? AND user_id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, g.Species, nullable(g.Variant), nullable(g.InoculationDate),
		nullable(g.SpawnSubstrate), nullable(g.BulkSubstrate), g.ID, g.UserID)
	if err != nil {
		r.logger.Database().Error("Grow update failed", "error", err.Error(), "id", g.ID)
		return fmt.Errorf("failed to update grow: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *GrowRepository) Delete(userID, id int64) error {
	query := `DELETE FROM grows WHERE id = ? AND user_id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing grow delete", "id", id, "userId", userID)

	_, err := r.db.Exec(query, id, userID)
	if err != nil {
		r.logger.Database().Error("Grow delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete grow: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
