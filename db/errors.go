// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL SQLSTATE codes the application reacts to
const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqCheckViolation       = "23514"
	pqNotNullViolation     = "23502"
	pqInvalidTextRepr      = "22P02"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqLockNotAvailable     = "55P03"
)

// MapError converts a driver error into a tagged application error.
// Errors that are already tagged pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var tagged *apperr.Error
	if errors.As(err, &tagged) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Wrap(apperr.CodeNotFound, op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.CodeStorageUnavailable, op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return apperr.Wrap(postgresCode(pqErr), op, err)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return apperr.Wrap(sqliteCode(sqliteErr.Code()), op, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return apperr.Wrap(apperr.CodeStorageUnavailable, op, err)
	}

	return apperr.Wrap(apperr.CodeInternal, op, err)
}

func postgresCode(err *pq.Error) apperr.Code {
	switch string(err.Code) {
	case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable, pqUniqueViolation:
		return apperr.CodeConcurrencyConflict
	case pqForeignKeyViolation, pqCheckViolation, pqNotNullViolation, pqInvalidTextRepr:
		return apperr.CodeInvalidInput
	}
	return apperr.CodeStorageUnavailable
}

func sqliteCode(code int) apperr.Code {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return apperr.CodeConcurrencyConflict
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return apperr.CodeInvalidInput
	}

	// Extended codes carry the primary code in the low byte.
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return apperr.CodeConcurrencyConflict
	case sqlite3.SQLITE_CONSTRAINT:
		return apperr.CodeInvalidInput
	}
	return apperr.CodeStorageUnavailable
}
