// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database, creates the schema, and runs transactions.

# Dialects

Open accepts "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite). The
schema and every query in the application are written once and run on
both: $N placeholders, TEXT keys, ON CONFLICT upserts and RETURNING.

SQLite connections are limited to one, so concurrent transactions queue
in database/sql instead of failing. Code running inside a transaction
must use the *sql.Tx it was given.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - album: one round per (album_date, album_number)
  - image: uploaded images, optionally scheduled at a position in an album
  - attempt: one row per (user_hash, album), the first play plus a replay counter
  - album_aggregate: first-play totals per album
  - album_histogram: successes per try count (1-5) per album
  - image_view: when each image of the day was shown

# Transactions

Runner.InTx wraps a function in a transaction. Serialization failures,
deadlocks, SQLITE_BUSY and unique violations raced by another writer are
classified as concurrency conflicts and the whole function is retried
with exponential backoff. When the attempts run out the caller gets a
storage_unavailable error.

	err := runner.InTx(ctx, "attempts.register", func(ctx context.Context, tx *sql.Tx) error {
		...
	})

MapError turns driver errors into apperr codes for code outside a Runner.
*/
package db
