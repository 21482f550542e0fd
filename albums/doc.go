// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package albums is the image catalog: albums keyed by (date, number),
// uploaded images, their schedule, and the read models built on them
// (image of the day, titles, history).
//
// AlbumExists is the only call the attempt ledger makes into this package.
// Albums with recorded plays cannot be moved.
package albums
