package database

import (
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	if err := AutoMigrate(db); err != nil {
		return err
	}

	// The application checks for conflicts before inserting, but a naive
	// check-then-insert races under concurrent requests for the same
	// property and dates. The exclusion constraint makes postgres itself
	// reject the second of two overlapping live bookings.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_no_overlap`)
	if err := db.Exec(`
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
		EXCLUDE USING gist (
			property_id WITH =,
			daterange(start_date::date, end_date::date) WITH &&
		) WHERE (status IN ('pending', 'confirmed', 'active') AND deleted_at IS NULL)
	`).Error; err != nil {
		return err
	}

	// Bookings must span at least one night.
	db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_valid_range`)
	if err := db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_valid_range CHECK (end_date > start_date)`).Error; err != nil {
		return err
	}

	// Update constraint on user roles
	db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
	if err := db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('tenant', 'landlord'))`).Error; err != nil {
		return err
	}

	return nil
}
