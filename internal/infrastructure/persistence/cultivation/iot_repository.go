package cultivation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
	"github.com/mycomize/mycomize-go/internal/infrastructure/observability/logging"
	"github.com/mycomize/mycomize-go/pkg/config"
)

type IoTRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewIoTRepository(db *sql.DB, logger *logging.ChanneledLogger) *IoTRepository {
	return &IoTRepository{
		db:     db,
		logger: logger,
	}
}

const gatewayColumns = `id, user_id, type, name, description, api_url, api_key, is_active,
	grow_id, created_at`

func (r *IoTRepository) FindGatewayByID(userID, id int64) (*cultivation.IoTGateway, error) {
	query := `SELECT ` + gatewayColumns + ` FROM iot_gateways WHERE id = ? AND user_id = ?`

	row := r.db.QueryRow(query, id, userID)
	gw, err := scanGateway(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan IoT gateway", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan gateway: %w", err)
	}
	return gw, nil
}

func (r *IoTRepository) FindGateways(userID int64, offset, limit int) ([]*cultivation.IoTGateway, error) {
	query := `SELECT ` + gatewayColumns + ` FROM iot_gateways WHERE user_id = ?
	          ORDER BY id LIMIT ? OFFSET ?`

	start := time.Now()
	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		r.logger.Database().Error("Failed to query IoT gateways", "error", err.Error(), "userId", userID)
		return nil, fmt.Errorf("failed to query gateways: %w", err)
	}
	defer rows.Close()

	gateways := []*cultivation.IoTGateway{}
	for rows.Next() {
		gw, err := scanGateway(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gateway: %w", err)
		}
		gateways = append(gateways, gw)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return gateways, rows.Err()
}

func (r *IoTRepository) StoreGateway(gw *cultivation.IoTGateway) error {
	query := `INSERT INTO iot_gateways (user_id, type, name, description, api_url, api_key,
	          is_active, grow_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing gateway insert", "userId", gw.UserID, "name", gw.Name)

	now := time.Now().UTC()
	result, err := r.db.Exec(query, gw.UserID, gw.Type, gw.Name, nullable(gw.Description),
		gw.APIURL, gw.APIKey, gw.IsActive, gw.GrowID, now)
	if err != nil {
		r.logger.Database().Error("Gateway insert failed", "error", err.Error(), "userId", gw.UserID)
		return fmt.Errorf("failed to insert gateway: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read gateway id: %w", err)
	}
	gw.ID = id
	gw.CreatedAt = now

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *IoTRepository) UpdateGateway(gw *cultivation.IoTGateway) error {
	query := `UPDATE iot_gateways SET name = ?, description = ?, api_url = ?, api_key = ?,
	          is_active = ?, grow_id = ? WHERE id = ? AND user_id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, gw.Name, nullable(gw.Description), gw.APIURL, gw.APIKey,
		gw.IsActive, gw.GrowID, gw.ID, gw.UserID)
	if err != nil {
		r.logger.Database().Error("Gateway update failed", "error", err.Error(), "id", gw.ID)
		return fmt.Errorf("failed to update gateway: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// DeleteGateway removes a gateway and its entities together.
func (r *IoTRepository) DeleteGateway(userID, id int64) error {
	start := time.Now()
	r.logger.Database().Debug("Executing gateway delete", "id", id, "userId", userID)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin gateway delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM iot_entities WHERE gateway_id IN
	    (SELECT id FROM iot_gateways WHERE id = ? AND user_id = ?)`, id, userID); err != nil {
		r.logger.Database().Error("Gateway entity cleanup failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete gateway entities: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM iot_gateways WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		r.logger.Database().Error("Gateway delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete gateway: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit gateway delete: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("DELETE iot_gateways", duration)
	}
	return nil
}

const entityColumns = `id, gateway_id, entity_id, entity_type, friendly_name, is_enabled,
	linked_grow_id, last_state, last_attributes, last_updated, created_at`

func (r *IoTRepository) FindEntities(gatewayID int64) ([]*cultivation.IoTEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM iot_entities WHERE gateway_id = ? ORDER BY entity_id`

	start := time.Now()
	rows, err := r.db.Query(query, gatewayID)
	if err != nil {
		r.logger.Database().Error("Failed to query IoT entities", "error", err.Error(), "gatewayId", gatewayID)
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	entities := []*cultivation.IoTEntity{}
	for rows.Next() {
		e, err := scanEntity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, e)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return entities, rows.Err()
}

func (r *IoTRepository) FindEntityByID(gatewayID, id int64) (*cultivation.IoTEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM iot_entities WHERE id = ? AND gateway_id = ?`

	row := r.db.QueryRow(query, id, gatewayID)
	e, err := scanEntity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan IoT entity", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to scan entity: %w", err)
	}
	return e, nil
}

func (r *IoTRepository) StoreEntity(e *cultivation.IoTEntity) error {
	query := `INSERT INTO iot_entities (gateway_id, entity_id, entity_type, friendly_name,
	          is_enabled, linked_grow_id, last_state, last_attributes, last_updated, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	now := time.Now().UTC()
	result, err := r.db.Exec(query, e.GatewayID, e.EntityID, e.EntityType, nullable(e.FriendlyName),
		e.IsEnabled, e.LinkedGrowID, nullable(e.LastState), rawJSON(e.LastAttributes), e.LastUpdated, now)
	if err != nil {
		r.logger.Database().Error("Entity insert failed", "error", err.Error(), "gatewayId", e.GatewayID)
		return fmt.Errorf("failed to insert entity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read entity id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *IoTRepository) UpdateEntity(e *cultivation.IoTEntity) error {
	query := `UPDATE iot_entities SET entity_type = ?, friendly_name = ?, is_enabled = ?,
	          linked_grow_id = ?, last_state = ?, last_attributes = ?, last_updated = ?
	          WHERE id = ? AND gateway_id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, e.EntityType, nullable(e.FriendlyName), e.IsEnabled,
		e.LinkedGrowID, nullable(e.LastState), rawJSON(e.LastAttributes), e.LastUpdated,
		e.ID, e.GatewayID)
	if err != nil {
		r.logger.Database().Error("Entity update failed", "error", err.Error(), "id", e.ID)
		return fmt.Errorf("failed to update entity: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

func (r *IoTRepository) DeleteEntity(gatewayID, id int64) error {
	query := `DELETE FROM iot_entities WHERE id = ? AND gateway_id = ?`

	_, err := r.db.Exec(query, id, gatewayID)
	if err != nil {
		r.logger.Database().Error("Entity delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

func scanGateway(scan func(dest ...any) error) (*cultivation.IoTGateway, error) {
	var gw cultivation.IoTGateway
	var description sql.NullString

	err := scan(&gw.ID, &gw.UserID, &gw.Type, &gw.Name, &description, &gw.APIURL, &gw.APIKey,
		&gw.IsActive, &gw.GrowID, &gw.CreatedAt)
	if err != nil {
		return nil, err
	}

	gw.Description = description.String
	return &gw, nil
}

func scanEntity(scan func(dest ...any) error) (*cultivation.IoTEntity, error) {
	var e cultivation.IoTEntity
	var friendlyName, lastState, lastAttributes sql.NullString

	err := scan(&e.ID, &e.GatewayID, &e.EntityID, &e.EntityType, &friendlyName, &e.IsEnabled,
		&e.LinkedGrowID, &lastState, &lastAttributes, &e.LastUpdated, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.FriendlyName = friendlyName.String
	e.LastState = lastState.String
	if lastAttributes.Valid {
		e.LastAttributes = []byte(lastAttributes.String)
	}
	return &e, nil
}
