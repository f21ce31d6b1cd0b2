// Package database provides schema instantiation for a fresh deployment.
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the database schema on first boot.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
// Every statement is idempotent so startup can run this unconditionally.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		payment_status TEXT NOT NULL DEFAULT 'unpaid',
		payment_method TEXT,
		payment_date TIMESTAMP,
		stripe_customer_id TEXT,
		stripe_payment_intent_id TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS grows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		species TEXT NOT NULL,
		variant TEXT,
		inoculation_date TEXT,
		spawn_substrate TEXT,
		bulk_substrate TEXT,
		user_id INTEGER NOT NULL REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		source TEXT,
		source_date TEXT NOT NULL,
		expiration_date TEXT,
		cost REAL,
		notes TEXT,
		in_use INTEGER NOT NULL DEFAULT 0,
		user_id INTEGER NOT NULL REFERENCES users(id),
		grow_id INTEGER REFERENCES grows(id),
		syringe_type TEXT,
		volume_ml REAL,
		species TEXT,
		variant TEXT,
		spawn_type TEXT,
		bulk_type TEXT,
		amount_lbs REAL
	)`,
	`CREATE TABLE IF NOT EXISTS bulk_grow_teks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_by INTEGER NOT NULL REFERENCES users(id),
		is_public INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		description TEXT,
		species TEXT NOT NULL,
		variant TEXT,
		tags TEXT,
		stages TEXT,
		like_count INTEGER NOT NULL DEFAULT 0,
		view_count INTEGER NOT NULL DEFAULT 0,
		import_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS monotub_tek_templates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		species TEXT NOT NULL,
		variant TEXT,
		tek_type TEXT NOT NULL DEFAULT 'monotub_bulk',
		difficulty TEXT,
		estimated_timeline INTEGER,
		tags TEXT,
		spawn_type TEXT NOT NULL,
		spawn_amount REAL NOT NULL,
		bulk_type TEXT NOT NULL,
		bulk_amount REAL NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 0,
		created_by INTEGER NOT NULL REFERENCES users(id),
		environmental_conditions TEXT,
		environmental_sensors TEXT,
		scheduled_actions TEXT,
		stage_durations TEXT,
		usage_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS calendar_tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_task_id TEXT NOT NULL,
		grow_id INTEGER NOT NULL REFERENCES grows(id),
		action TEXT NOT NULL,
		stage_key TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS iot_gateways (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		type TEXT NOT NULL DEFAULT 'home_assistant',
		name TEXT NOT NULL,
		description TEXT,
		api_url TEXT NOT NULL,
		api_key TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		grow_id INTEGER REFERENCES grows(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS iot_entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		gateway_id INTEGER NOT NULL REFERENCES iot_gateways(id),
		entity_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		friendly_name TEXT,
		is_enabled INTEGER NOT NULL DEFAULT 1,
		linked_grow_id INTEGER REFERENCES grows(id),
		last_state TEXT,
		last_attributes TEXT,
		last_updated TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(gateway_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		plan_id TEXT NOT NULL,
		plan_name TEXT NOT NULL,
		plan_description TEXT,
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL DEFAULT 'usd',
		billing_interval TEXT NOT NULL DEFAULT 'one_time',
		confirmation_number TEXT NOT NULL UNIQUE,
		payment_method TEXT NOT NULL,
		payment_intent_id TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_grows_user ON grows(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_user ON inventory_items(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_grow ON inventory_items(grow_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teks_public ON bulk_grow_teks(is_public)`,
	`CREATE INDEX IF NOT EXISTS idx_teks_creator ON bulk_grow_teks(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_templates_creator ON monotub_tek_templates(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_templates_species ON monotub_tek_templates(species)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_grow ON calendar_tasks(grow_id)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_parent ON calendar_tasks(parent_task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_iot_gateways_user ON iot_gateways(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_iot_entities_gateway ON iot_entities(gateway_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_stripe_intent ON users(stripe_payment_intent_id)`,
}
