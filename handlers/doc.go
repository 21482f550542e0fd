// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Daily Gallery API.

# Handler Types

Each handler is a struct holding the services it calls:

  - IdentityHandler: resolves or mints the caller's user id
  - PlayHandler: records plays and reports user results and album stats
  - AlbumHandler: album lookup, listing, history and re-scheduling
  - ImageHandler: uploads, scheduling, image of the day and titles

Handlers are created via constructor functions:

	playHandler := handlers.NewPlayHandler(ledger, reporter, resolver, cfg.SessionTTL)

# Identity

Endpoints that act on behalf of a user accept an id from, in order, the
JSON body (user_id), the X-User-ID header or the user_id query parameter.
Without one, the gallery_session cookie is looked up. If that fails too a
new id is minted and a session cookie is set.

# Playing

	POST /api/plays → SubmitPlay

The first play of a user on an album is recorded and counted in the album
stats; later plays only bump the play count. The response status is 201
for a first play and 200 for a repeat.

	GET /api/albums/{date}/{number}/me    → GetUserResult
	GET /api/albums/{date}/{number}/stats → GetAlbumStats

# Errors

Failures are reported as {"error", "message"} with the status derived from
the apperr code:

	invalid_input                   → 400
	not_found                       → 404
	conflict, concurrency_conflict  → 409
	storage_unavailable             → 503
	internal                        → 500
*/
package handlers
