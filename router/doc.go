// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Daily Gallery API.

# Route Registration

NewRouter wires the services and returns a configured http.ServeMux:

	mux := router.NewRouter(db, cfg, sessions, files)

sessions backs identity resolution (memory or Redis) and files stores
uploads (local directory or Cloudinary).

# Endpoints

Health:

	GET /health

Identity and plays:

	GET  /api/identity                    - Resolve or mint the user id
	POST /api/plays                       - Record a play
	GET  /api/albums/{date}/{number}/me    - The caller's result
	GET  /api/albums/{date}/{number}/stats - Album totals and histogram

Albums:

	GET  /api/albums/{date}/{number}      - Album with its images
	POST /api/albums/{date}/{number}/move - Re-schedule an unplayed album
	GET  /api/albums/{date}               - Albums on a date
	GET  /api/today                       - Today's albums
	GET  /api/history                     - Albums grouped by date

Images:

	GET  /api/image-of-the-day      - Today's image, or a flagged random one
	GET  /api/images                - All active images
	POST /api/images                - Multipart upload
	POST /api/images/{id}/schedule  - Add an image to an album
	GET  /api/titles                - Distinct titles for answer suggestions

Files:

	GET /uploads/... - Stored uploads, local store only
	GET /            - STATIC_DIR when set, otherwise a banner
*/
package router
