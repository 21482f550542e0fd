// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package uploads stores uploaded images on the local filesystem or in
// Cloudinary.
//
// Only png, jpg, jpeg and gif files are accepted, and the content must
// sniff as an image. Stored names are sanitized and prefixed with a
// YYYYMMDD_HHMMSS timestamp and a random suffix so repeated uploads of the
// same file never collide.
package uploads
