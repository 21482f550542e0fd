// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation and hashing utilities.

Nothing here authenticates anyone: user identifiers are opaque values
supplied by the browser and trusted as-is.

# User IDs

Server-minted identifiers are UUIDv7 strings:

	id, err := auth.GenerateUserID()

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded and name the server-side session that
remembers a minted user id for browsers that do not send their own.

# User Hashing

Attempt records are keyed by a one-way hash of the user id:

	hash, err := auth.HashUserID(userID, salt)

Returns the full HMAC-SHA256 as 64 hex characters. The same id and salt
always produce the same hash, so lookups need no extra index.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
