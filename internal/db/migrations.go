package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS cities (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		postal_code VARCHAR(16),
		department VARCHAR(64),
		country VARCHAR(64) NOT NULL DEFAULT 'France'
	);`,
	`CREATE TABLE IF NOT EXISTS sectors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		city_id BIGINT REFERENCES cities(id)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_sectors_name ON sectors (name);`,
	`CREATE TABLE IF NOT EXISTS families (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		contact_name TEXT,
		adult_count INTEGER NOT NULL DEFAULT 0 CHECK (adult_count >= 0),
		child_count INTEGER NOT NULL DEFAULT 0 CHECK (child_count >= 0),
		address TEXT,
		sector_id BIGINT REFERENCES sectors(id),
		can_travel BOOLEAN NOT NULL DEFAULT FALSE,
		phone VARCHAR(32),
		phone_alt VARCHAR(32),
		circumstance TEXT,
		state VARCHAR(32) NOT NULL DEFAULT 'Nouveau',
		first_contact DATE,
		notes TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_families_state ON families (state);`,
	`CREATE INDEX IF NOT EXISTS idx_families_sector_id ON families (sector_id) WHERE sector_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id BIGSERIAL PRIMARY KEY,
		last_name TEXT NOT NULL,
		first_name TEXT,
		email TEXT,
		phone VARCHAR(32),
		vehicle_type VARCHAR(32),
		sector_id BIGINT REFERENCES sectors(id),
		role VARCHAR(32)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_sector_id ON drivers (sector_id) WHERE sector_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		id BIGSERIAL PRIMARY KEY,
		family_id BIGINT NOT NULL REFERENCES families(id),
		delivery_date DATE NOT NULL,
		occasion TEXT NOT NULL,
		driver_id BIGINT REFERENCES drivers(id),
		partner_id BIGINT REFERENCES drivers(id),
		parts_count INTEGER NOT NULL DEFAULT 0,
		with_child BOOLEAN NOT NULL DEFAULT FALSE,
		prepared BOOLEAN NOT NULL DEFAULT FALSE,
		in_progress BOOLEAN NOT NULL DEFAULT FALSE,
		delivered BOOLEAN NOT NULL DEFAULT FALSE,
		route_order INTEGER NOT NULL DEFAULT 0,
		run_id UUID,
		note TEXT,
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_occasion_date ON deliveries (occasion, delivery_date);`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_driver_date ON deliveries (driver_id, delivery_date) WHERE driver_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_family ON deliveries (family_id);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'deliveries' AND column_name = 'route_order') THEN
			ALTER TABLE deliveries ADD COLUMN route_order INTEGER NOT NULL DEFAULT 0;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'deliveries' AND column_name = 'run_id') THEN
			ALTER TABLE deliveries ADD COLUMN run_id UUID;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'deliveries' AND column_name = 'partner_id') THEN
			ALTER TABLE deliveries ADD COLUMN partner_id BIGINT REFERENCES drivers(id);
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
