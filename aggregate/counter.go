// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/models"
)

// Counter reads and updates album aggregates.
type Counter struct {
	db *sql.DB
}

func NewCounter(conn *sql.DB) *Counter {
	return &Counter{db: conn}
}

// RecordFirstPlay adds one first play to the album's totals. tries is the
// stored value: 1-5 for a success, models.FailedTries for a failure.
func (c *Counter) RecordFirstPlay(ctx context.Context, tx *sql.Tx, key models.AlbumKey, succeeded bool, tries int) error {
	const op = "aggregate.record_first_play"

	if succeeded && (tries < 1 || tries > models.MaxTries) {
		return apperr.InvalidInput(op, "tries for a success must be 1-%d, got %d", models.MaxTries, tries)
	}
	if !succeeded && tries != models.FailedTries {
		return apperr.InvalidInput(op, "tries for a failure must be %d, got %d", models.FailedTries, tries)
	}

	successes, failures := 0, 1
	if succeeded {
		successes, failures = 1, 0
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO album_aggregate (album_date, album_number, total_players, successes, failures, total_tries, updated_at)
		VALUES ($1, $2, 1, $3, $4, $5, $6)
		ON CONFLICT (album_date, album_number) DO UPDATE SET
			total_players = album_aggregate.total_players + 1,
			successes = album_aggregate.successes + EXCLUDED.successes,
			failures = album_aggregate.failures + EXCLUDED.failures,
			total_tries = album_aggregate.total_tries + EXCLUDED.total_tries,
			updated_at = EXCLUDED.updated_at
	`, key.Date, key.Number, successes, failures, tries, db.Now())
	if err != nil {
		return db.MapError(op, fmt.Errorf("upsert totals for %s: %w", key, err))
	}

	if !succeeded {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO album_histogram (album_date, album_number, tries, successes)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (album_date, album_number, tries) DO UPDATE SET
			successes = album_histogram.successes + 1
	`, key.Date, key.Number, tries)
	if err != nil {
		return db.MapError(op, fmt.Errorf("upsert histogram bucket %d for %s: %w", tries, key, err))
	}

	return nil
}

// Get returns the album's totals. An album nobody has played yields a zero
// aggregate, not an error. Totals and histogram come from one statement so
// they always describe the same set of first plays.
func (c *Counter) Get(ctx context.Context, key models.AlbumKey) (models.AlbumAggregate, error) {
	const op = "aggregate.get"

	agg := models.AlbumAggregate{Album: key}

	rows, err := c.db.QueryContext(ctx, `
		SELECT a.total_players, a.successes, a.failures, a.total_tries, h.tries, h.successes
		FROM album_aggregate a
		LEFT JOIN album_histogram h
			ON h.album_date = a.album_date AND h.album_number = a.album_number
		WHERE a.album_date = $1 AND a.album_number = $2
		ORDER BY h.tries
	`, key.Date, key.Number)
	if err != nil {
		return models.AlbumAggregate{}, db.MapError(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tries, count sql.NullInt64
		if err := rows.Scan(&agg.TotalPlayers, &agg.Successes, &agg.Failures, &agg.TotalTries, &tries, &count); err != nil {
			return models.AlbumAggregate{}, db.MapError(op, err)
		}
		if tries.Valid && tries.Int64 >= 1 && tries.Int64 <= models.MaxTries {
			agg.Histogram[tries.Int64-1] = int(count.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return models.AlbumAggregate{}, db.MapError(op, err)
	}

	return agg, nil
}
