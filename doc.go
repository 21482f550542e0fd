// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Daily Gallery API server.

Daily Gallery publishes albums of images each day. Players guess what the
album shows; the server records each user's first result per album and
serves per-album statistics.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first:

	DATABASE_URL=gallery.db USER_HASH_SALT=secret go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -hash-salt secret

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - USER_HASH_SALT (-hash-salt): Secret for hashing user ids at rest

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - UPLOAD_DIR, MAX_UPLOAD_BYTES, BASE_URL: local upload storage
  - STATIC_DIR: frontend served at /
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, SESSION_TTL: session storage
  - CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET
  - TX_MAX_ATTEMPTS: retries for conflicting transactions

# Architecture

  - handlers: HTTP request handlers (identity, plays, albums, images)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, session cookie
  - attempts: per-user attempt ledger
  - aggregate: per-album totals and histogram
  - stats: read-side views of results and totals
  - albums: album and image catalog
  - identity: user id resolution and session stores
  - uploads: local and Cloudinary image storage
  - db: connection, schema, error mapping, transaction retry
  - apperr: tagged errors
  - models: Request/response types
  - auth: id generation and user id hashing
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
