// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

main loads a .env file with godotenv before calling ParseFlags, so values
from the file behave like real environment variables.

# CLI Flags and Environment Variables

	-p             PORT                  Server port (default 3318)
	-d             DATABASE_URL          Database URL (required)
	-t             DATABASE_TYPE         sqlite (default) or postgres
	--hash-salt    USER_HASH_SALT        HMAC salt for stored user ids (required)
	--upload-dir   UPLOAD_DIR            Local upload directory (default ./uploads)
	--max-upload   MAX_UPLOAD_BYTES      Upload size limit (default 16 MiB)
	--base-url     BASE_URL              Prefix for upload URLs
	--static-dir   STATIC_DIR            Frontend served at /
	--redis        REDIS_ADDR            Redis session store; memory when empty
	               REDIS_PASSWORD, REDIS_DB
	--session-ttl  SESSION_TTL           Session lifetime (default 8760h)
	--tx-attempts  TX_MAX_ATTEMPTS       Transaction attempts on conflict (default 5)
	               CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL or USER_HASH_SALT is missing,
if a numeric or duration variable does not parse, or if only some of the
Cloudinary credentials are set.
*/
package cliparse
