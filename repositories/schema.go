package repositories

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id         BIGSERIAL PRIMARY KEY,
        username   TEXT NOT NULL UNIQUE,
        password   TEXT NOT NULL,
        role       TEXT NOT NULL DEFAULT 'admin',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS cities (
        id                   BIGSERIAL PRIMARY KEY,
        city_name            TEXT NOT NULL,
        available_properties INTEGER NOT NULL DEFAULT 0 CHECK (available_properties >= 0),
        image_url            TEXT NOT NULL DEFAULT '',
        updated_date         TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`DROP INDEX IF EXISTS cities_normalized_name_key`,
	`CREATE UNIQUE INDEX IF NOT EXISTS cities_name_key ON cities (` + nameKey("city_name") + `)`,
	`CREATE TABLE IF NOT EXISTS properties (
        id                 BIGSERIAL PRIMARY KEY,
        property_type      TEXT NOT NULL,
        full_name          TEXT NOT NULL,
        phone_number       TEXT NOT NULL,
        property_name      TEXT,
        commercial_type    TEXT,
        rental_type        TEXT,
        num_of_rooms       INTEGER,
        num_of_bedrooms    INTEGER,
        num_of_toilets     INTEGER,
        num_of_villa_rooms INTEGER,
        location_details   TEXT NOT NULL CHECK (location_details <> ''),
        description        TEXT,
        plot_size          TEXT NOT NULL,
        budget             TEXT NOT NULL,
        image_urls         TEXT[] NOT NULL DEFAULT '{}',
        updated_date       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CONSTRAINT properties_land_description CHECK (property_type <> 'Land' OR COALESCE(description, '') <> '')
    )`,
	`CREATE TABLE IF NOT EXISTS enquiry (
        id               BIGSERIAL PRIMARY KEY,
        full_name        TEXT NOT NULL,
        phone            TEXT NOT NULL,
        property_type    TEXT NOT NULL,
        commercial_type  TEXT,
        rental_type      TEXT,
        num_of_rooms     INTEGER,
        num_of_bedrooms  INTEGER,
        num_of_toilets   INTEGER,
        location_details TEXT,
        plot_size        TEXT,
        budget           TEXT,
        description      TEXT,
        submitted_date   TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS visit_schedules (
        id               BIGSERIAL PRIMARY KEY,
        full_name        TEXT NOT NULL,
        email            TEXT,
        phone_number     TEXT NOT NULL,
        visit_date       DATE,
        visit_time       TEXT,
        property_name    TEXT,
        location_details TEXT,
        created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS selling_info (
        id               BIGSERIAL PRIMARY KEY,
        full_name        TEXT NOT NULL,
        phone            TEXT NOT NULL,
        property_type    TEXT NOT NULL,
        property_name    TEXT,
        commercial_type  TEXT,
        rental_type      TEXT,
        num_of_rooms     INTEGER,
        num_of_bedrooms  INTEGER,
        num_of_toilets   INTEGER,
        location_details TEXT,
        plot_size        TEXT,
        budget           TEXT,
        description      TEXT,
        image_urls       TEXT[] NOT NULL DEFAULT '{}',
        updated_date     TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
}

// EnsureSchema creates any missing table or index. It is safe to run on
// every start.
func EnsureSchema(ctx context.Context, db DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
