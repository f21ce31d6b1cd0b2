package cultivation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type InventoryRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewInventoryRepository(db *sql.DB, logger *logging.ChanneledLogger) *InventoryRepository {
	return &InventoryRepository{
		db:     db,
		logger: logger,
	}
}

const inventoryColumns = `id, type, source, source_date, expiration_date, cost, notes, in_use,
	user_id, grow_id, syringe_type, volume_ml, species, variant, spawn_type, bulk_type, amount_lbs`

func (r *InventoryRepository) FindByID(userID, id int64) (*cultivation.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = ? AND user_id = ?`

	row := r.db.QueryRow(query, id, userID)
	item, err := scanInventoryItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan inventory item", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan inventory item: %w", err)
	}
	return item, nil
}

func (r *InventoryRepository) FindAll(userID int64, filter repositories.InventoryFilter) ([]*cultivation.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE user_id = ?`
	args := []any{userID}

	if filter.AvailableOnly {
		query += ` AND in_use = 0`
	}
	if filter.ItemType != "" {
		query += ` AND type = ?`
		args = append(args, filter.ItemType)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	start := time.Now()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to query inventory", "error", err.Error(), "userId", userID)
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := []*cultivation.InventoryItem{}
	for rows.Next() {
		item, err := scanInventoryItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return items, rows.Err()
}

func (r *InventoryRepository) Store(item *cultivation.InventoryItem) error {
	query := `INSERT INTO inventory_items (type, source, source_date, expiration_date, cost, notes,
	          in_use, user_id, grow_id, syringe_type, volume_ml, species, variant, spawn_type,
	          bulk_type, amount_lbs)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing inventory insert", "userId", item.UserID, "type", item.Type)

	result, err := r.db.Exec(query, item.Type, nullable(item.Source), item.SourceDate,
		nullable(item.ExpirationDate), item.Cost, nullable(item.Notes), item.InUse,
		item.UserID, item.GrowID, nullable(item.SyringeType), item.VolumeML,
		nullable(item.Species), nullable(item.Variant), nullable(item.SpawnType),
		nullable(item.BulkType), item.AmountLbs)
	if err != nil {
		r.logger.Database().Error("Inventory insert failed", "error", err.Error(), "userId", item.UserID)
		return fmt.Errorf("failed to insert inventory item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inventory item id: %w", err)
	}
	item.ID = id

	duration := time.Since(start)
	r.logger.Database().Info("Inventory insert completed", "id", item.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *InventoryRepository) Update(item *cultivation.InventoryItem) error {
	query := `UPDATE inventory_items SET type = ?, source = ?, source_date = ?, expiration_date = ?,
	          cost = ?, notes = ?, in_use = ?, grow_id = ?, syringe_type = ?, volume_ml = ?,
	          species = ?, variant = ?, spawn_type = ?, bulk_type = ?, amount_lbs = ?
	          WHERE id = ? AND user_id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, item.Type, nullable(item.Source), item.SourceDate,
		nullable(item.ExpirationDate), item.Cost, nullable(item.Notes), item.InUse,
		item.GrowID, nullable(item.SyringeType), item.VolumeML, nullable(item.Species),
		nullable(item.Variant), nullable(item.SpawnType), nullable(item.BulkType),
		item.AmountLbs, item.ID, item.UserID)
	if err != nil {
		r.logger.Database().Error("Inventory update failed", "error", err.Error(), "id", item.ID)
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *InventoryRepository) Delete(userID, id int64) error {
	query := `DELETE FROM inventory_items WHERE id = ? AND user_id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, id, userID)
	if err != nil {
		r.logger.Database().Error("Inventory delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func scanInventoryItem(scan func(dest ...any) error) (*cultivation.InventoryItem, error) {
	var item cultivation.InventoryItem
	var source, expirationDate, notes, syringeType, species, variant, spawnType, bulkType sql.NullString

	err := scan(&item.ID, &item.Type, &source, &item.SourceDate, &expirationDate, &item.Cost,
		&notes, &item.InUse, &item.UserID, &item.GrowID, &syringeType, &item.VolumeML,
		&species, &variant, &spawnType, &bulkType, &item.AmountLbs)
	if err != nil {
		return nil, err
	}

	item.Source = source.String
	item.ExpirationDate = expirationDate.String
	item.Notes = notes.String
	item.SyringeType = syringeType.String
	item.Species = species.String
	item.Variant = variant.String
	item.SpawnType = spawnType.String
	item.BulkType = bulkType.String
	return &item, nil
}
