// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/danielhkuo/daily-gallery/apperr"
)

// DefaultMaxAttempts is how many times a conflicting transaction is tried
// before the caller sees StorageUnavailable.
const DefaultMaxAttempts = 5

// TxFunc is the body of a transaction. All reads and writes must go
// through tx; a SQLite pool holds a single connection.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

// Runner executes transactions with bounded retry on concurrency conflicts.
type Runner struct {
	db          *sql.DB
	maxAttempts uint
	initial     time.Duration
	max         time.Duration
}

// NewRunner creates a transaction runner. maxAttempts < 1 uses DefaultMaxAttempts.
func NewRunner(db *sql.DB, maxAttempts int) *Runner {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Runner{
		db:          db,
		maxAttempts: uint(maxAttempts),
		initial:     10 * time.Millisecond,
		max:         250 * time.Millisecond,
	}
}

// DB returns the underlying handle for reads outside a transaction.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// InTx runs fn inside a transaction. Errors from fn or commit are mapped
// through MapError; concurrency conflicts roll back and rerun fn from the
// start, other errors return immediately.
func (r *Runner) InTx(ctx context.Context, op string, fn TxFunc) error {
	attempts := 0
	operation := func() (struct{}, error) {
		attempts++
		err := MapError(op, r.runOnce(ctx, fn))
		if err == nil {
			return struct{}{}, nil
		}
		if apperr.IsCode(err, apperr.CodeConcurrencyConflict) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = r.max

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("transaction conflict, retrying", "op", op, "attempt", attempts, "backoff", next, "error", err)
		}),
	)
	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if apperr.IsCode(err, apperr.CodeConcurrencyConflict) {
		slog.Error("transaction retries exhausted", "op", op, "attempts", attempts, "error", err)
		return &apperr.Error{
			Code:    apperr.CodeStorageUnavailable,
			Op:      op,
			Message: fmt.Sprintf("transaction gave up after %d attempts", attempts),
			Cause:   err,
		}
	}
	return MapError(op, err)
}

func (r *Runner) runOnce(ctx context.Context, fn TxFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}
