package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id              BIGSERIAL PRIMARY KEY,
		plate_number    TEXT NOT NULL,
		normalized      TEXT NOT NULL,
		offense_count   BIGINT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_vehicles_normalized ON vehicles(normalized);`,
	`CREATE TABLE IF NOT EXISTS violation_records (
		id              BIGSERIAL PRIMARY KEY,
		challan_ref     TEXT NOT NULL,
		vehicle_id      BIGINT REFERENCES vehicles(id),
		vehicle_no      TEXT NOT NULL,
		violation_type  TEXT NOT NULL,
		fine_amount     BIGINT NOT NULL,
		confidence      NUMERIC(5,4),
		description     TEXT,
		frame_number    INT,
		timestamp_sec   NUMERIC(12,3),
		details         JSONB,
		event_time      TIMESTAMPTZ NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_violation_records_challan_ref ON violation_records(challan_ref);`,
	`CREATE INDEX IF NOT EXISTS idx_violation_records_vehicle_id ON violation_records(vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_violation_records_event_time ON violation_records(event_time);`,
	`CREATE INDEX IF NOT EXISTS idx_violation_records_type ON violation_records(violation_type);`,
}

// Migrate applies the schema statements in order.
func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
