// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity resolves which user a request belongs to.

Resolution order:

 1. A client-supplied user id (X-User-ID header or user_id field) is used
    verbatim.
 2. The gallery_session cookie is looked up in the SessionStore.
 3. A new UUIDv7 user id is minted and stored under the session, creating
    a session token when the request had none.

Identity is never an error: if the session store is unreachable the
failure is logged and the request proceeds with a freshly minted id.

Two stores are provided: MemoryStore for single-process deployments and
tests, and RedisStore (SET NX with TTL) when REDIS_ADDR is configured.
*/
package identity
