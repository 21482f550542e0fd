// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package attempts

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/auth"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/models"
)

// AlbumChecker is the read-only album lookup the ledger validates against.
type AlbumChecker interface {
	AlbumExists(ctx context.Context, key models.AlbumKey) (bool, error)
}

// FirstPlayRecorder applies a first play to album totals inside the
// ledger's transaction.
type FirstPlayRecorder interface {
	RecordFirstPlay(ctx context.Context, tx *sql.Tx, key models.AlbumKey, succeeded bool, tries int) error
}

// Ledger records one attempt row per (hashed user, album).
type Ledger struct {
	runner   *db.Runner
	db       *sql.DB
	albums   AlbumChecker
	recorder FirstPlayRecorder
	salt     string
}

func NewLedger(runner *db.Runner, albums AlbumChecker, recorder FirstPlayRecorder, salt string) *Ledger {
	return &Ledger{
		runner:   runner,
		db:       runner.DB(),
		albums:   albums,
		recorder: recorder,
		salt:     salt,
	}
}

// ClampTries converts a reported try count to the stored value: at most
// models.MaxTries for a success, models.FailedTries for a failure.
func ClampTries(succeeded bool, reported int) int {
	if !succeeded {
		return models.FailedTries
	}
	return min(reported, models.MaxTries)
}

// RegisterAttempt records a play. The first play for a (user, album) pair
// creates the attempt row and updates the album totals in one transaction;
// later plays only bump play_count and last_played_at.
func (l *Ledger) RegisterAttempt(ctx context.Context, userID string, key models.AlbumKey, succeeded bool, triesReported int) (models.AttemptOutcome, error) {
	const op = "attempts.register"

	if strings.TrimSpace(userID) == "" {
		return models.AttemptOutcome{}, apperr.InvalidInput(op, "user_id is required")
	}
	if err := key.Validate(); err != nil {
		return models.AttemptOutcome{}, apperr.InvalidInput(op, "%v", err)
	}
	if triesReported < 1 {
		return models.AttemptOutcome{}, apperr.InvalidInput(op, "tries must be >= 1, got %d", triesReported)
	}

	exists, err := l.albums.AlbumExists(ctx, key)
	if err != nil {
		return models.AttemptOutcome{}, err
	}
	if !exists {
		return models.AttemptOutcome{}, apperr.InvalidInput(op, "album %s does not exist", key)
	}

	userHash, err := auth.HashUserID(userID, l.salt)
	if err != nil {
		return models.AttemptOutcome{}, apperr.InvalidInput(op, "%v", err)
	}
	tries := ClampTries(succeeded, triesReported)

	var outcome models.AttemptOutcome
	err = l.runner.InTx(ctx, op, func(ctx context.Context, tx *sql.Tx) error {
		now := db.Now()

		res, err := tx.ExecContext(ctx, `
			INSERT INTO attempt (user_hash, album_date, album_number, succeeded, tries_to_success, play_count, first_played_at, last_played_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6, $6)
			ON CONFLICT (user_hash, album_date, album_number) DO NOTHING
		`, userHash, key.Date, key.Number, succeeded, tries, now)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if inserted == 1 {
			if err := l.recorder.RecordFirstPlay(ctx, tx, key, succeeded, tries); err != nil {
				return err
			}
			outcome = models.AttemptOutcome{IsFirstPlay: true, PlayCount: 1}
			return nil
		}

		var count int
		err = tx.QueryRowContext(ctx, `
			UPDATE attempt
			SET play_count = play_count + 1, last_played_at = $1
			WHERE user_hash = $2 AND album_date = $3 AND album_number = $4
			RETURNING play_count
		`, now, userHash, key.Date, key.Number).Scan(&count)
		if errors.Is(err, sql.ErrNoRows) {
			// The conflicting row is not visible yet; start over.
			return apperr.New(apperr.CodeConcurrencyConflict, op, "attempt row not visible after conflict")
		}
		if err != nil {
			return err
		}
		outcome = models.AttemptOutcome{IsFirstPlay: false, PlayCount: count}
		return nil
	})
	if err != nil {
		slog.Error("failed to register attempt", "album", key.String(), "error", err)
		return models.AttemptOutcome{}, err
	}

	if outcome.IsFirstPlay {
		slog.Info("first play recorded", "album", key.String(), "succeeded", succeeded, "tries", tries)
	} else {
		slog.Debug("repeat play recorded", "album", key.String(), "play_count", outcome.PlayCount)
	}
	return outcome, nil
}

// Get returns the user's attempt record for an album. found is false when
// the user has never played it.
func (l *Ledger) Get(ctx context.Context, userID string, key models.AlbumKey) (record models.AttemptRecord, found bool, err error) {
	const op = "attempts.get"

	if err := key.Validate(); err != nil {
		return models.AttemptRecord{}, false, apperr.InvalidInput(op, "%v", err)
	}
	userHash, err := auth.HashUserID(userID, l.salt)
	if err != nil {
		return models.AttemptRecord{}, false, apperr.InvalidInput(op, "%v", err)
	}

	var (
		tries       int
		first, last db.Time
	)
	err = l.db.QueryRowContext(ctx, `
		SELECT succeeded, tries_to_success, play_count, first_played_at, last_played_at
		FROM attempt
		WHERE user_hash = $1 AND album_date = $2 AND album_number = $3
	`, userHash, key.Date, key.Number).Scan(&record.Succeeded, &tries, &record.PlayCount, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AttemptRecord{}, false, nil
	}
	if err != nil {
		return models.AttemptRecord{}, false, db.MapError(op, err)
	}

	record.UserHash = userHash
	record.Album = key
	if record.Succeeded {
		record.Tries = tries
	}
	record.FirstPlayedAt = first.Time
	record.LastPlayedAt = last.Time
	return record, true, nil
}
