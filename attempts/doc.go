// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package attempts is the ledger of plays, one row per (hashed user, album).

RegisterAttempt decides first play versus repeat with a single
conditional insert:

	INSERT INTO attempt (...) VALUES (...)
	ON CONFLICT (user_hash, album_date, album_number) DO NOTHING

One affected row means this call created the record, and the album totals
are updated in the same transaction. Zero rows means the record already
existed; play_count and last_played_at are bumped and the stored result
and the totals are left alone. Concurrent submissions for the same pair
therefore produce exactly one first play.

User ids are hashed with HMAC-SHA256 and a configured salt before they
reach storage. Reported tries are clamped to 5 for successes; failures
are stored as 6.
*/
package attempts
