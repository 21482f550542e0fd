// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregate maintains per-album first-play totals.

The counter is updated only as a side effect of a new attempt row and
always inside the transaction that created it, so totals and attempt
rows commit together or not at all. Each update is a single
upsert-with-increment; the histogram bucket is addressed by its integer
try count in the album_histogram table.

Invariants after every commit:

	total_players == successes + failures
	sum(histogram) == successes
*/
package aggregate
