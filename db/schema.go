// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The same statements run on PostgreSQL and SQLite.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Tables lists every table in dependency order, children first.
var Tables = []string{
	"image_view",
	"album_histogram",
	"album_aggregate",
	"attempt",
	"image",
	"album",
}

var schema = []string{
	// Albums: one guessing round per (date, number)
	`CREATE TABLE IF NOT EXISTS album (
		album_date TEXT NOT NULL,
		album_number INTEGER NOT NULL CHECK (album_number >= 1),
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (album_date, album_number)
	)`,

	// Images, optionally scheduled into an album slot
	`CREATE TABLE IF NOT EXISTS image (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		stored_name TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		album_date TEXT,
		album_number INTEGER,
		position INTEGER CHECK (position >= 1),
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (album_date, album_number) REFERENCES album(album_date, album_number),
		UNIQUE (album_date, album_number, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_image_album ON image(album_date, album_number)`,
	`CREATE INDEX IF NOT EXISTS idx_image_title ON image(title)`,

	// Attempts: exactly one row per (hashed user, album)
	`CREATE TABLE IF NOT EXISTS attempt (
		user_hash TEXT NOT NULL,
		album_date TEXT NOT NULL,
		album_number INTEGER NOT NULL,
		succeeded BOOLEAN NOT NULL,
		tries_to_success INTEGER NOT NULL CHECK (tries_to_success BETWEEN 1 AND 6),
		play_count INTEGER NOT NULL DEFAULT 1 CHECK (play_count >= 1),
		first_played_at TIMESTAMP NOT NULL,
		last_played_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_hash, album_date, album_number),
		FOREIGN KEY (album_date, album_number) REFERENCES album(album_date, album_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempt_album ON attempt(album_date, album_number)`,

	// Aggregates: first-play rollup per album
	`CREATE TABLE IF NOT EXISTS album_aggregate (
		album_date TEXT NOT NULL,
		album_number INTEGER NOT NULL,
		total_players INTEGER NOT NULL DEFAULT 0,
		successes INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		total_tries INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (album_date, album_number),
		FOREIGN KEY (album_date, album_number) REFERENCES album(album_date, album_number)
	)`,

	// Success histogram, one row per try bucket
	`CREATE TABLE IF NOT EXISTS album_histogram (
		album_date TEXT NOT NULL,
		album_number INTEGER NOT NULL,
		tries INTEGER NOT NULL CHECK (tries BETWEEN 1 AND 5),
		successes INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (album_date, album_number, tries),
		FOREIGN KEY (album_date, album_number) REFERENCES album(album_date, album_number)
	)`,

	// Display history for the image of the day
	`CREATE TABLE IF NOT EXISTS image_view (
		id TEXT PRIMARY KEY,
		image_id TEXT NOT NULL REFERENCES image(id) ON DELETE CASCADE,
		shown_on TEXT NOT NULL,
		shown_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_image_view_shown_on ON image_view(shown_on)`,
}
