// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package stats builds the read-side views: a user's stored result for an
// album and the album's success statistics.
//
// The success rate is 100*successes/total_players rounded to one decimal,
// and 0 when nobody has played. Album statistics fall back to zero totals
// with Degraded set when storage fails; user results do not.
package stats
