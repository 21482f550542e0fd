// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/daily-gallery/identity"
	"github.com/danielhkuo/daily-gallery/middleware"
	"github.com/danielhkuo/daily-gallery/models"
)

type IdentityHandler struct {
	resolver   *identity.Resolver
	sessionTTL time.Duration
}

func NewIdentityHandler(resolver *identity.Resolver, sessionTTL time.Duration) *IdentityHandler {
	return &IdentityHandler{resolver: resolver, sessionTTL: sessionTTL}
}

// GetIdentity handles GET /api/identity
func (h *IdentityHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	id := resolveRequest(h.resolver, h.sessionTTL, w, r, "")

	middleware.JSONResponse(w, http.StatusOK, models.IdentityResponse{
		UserID: id.UserID,
		Source: id.Source,
	})
}

// resolveRequest picks the caller's user id. An id in the request body
// wins, then the X-User-ID header, then the user_id query parameter, then
// the session cookie. A freshly minted id is remembered in a new cookie.
func resolveRequest(resolver *identity.Resolver, ttl time.Duration, w http.ResponseWriter, r *http.Request, bodyUserID string) identity.Identity {
	clientID := bodyUserID
	if strings.TrimSpace(clientID) == "" {
		clientID = r.Header.Get(middleware.UserIDHeader)
	}
	if strings.TrimSpace(clientID) == "" {
		clientID = r.URL.Query().Get("user_id")
	}

	id := resolver.Resolve(r.Context(), clientID, middleware.SessionID(r))
	if id.Minted() && id.SessionID != "" {
		middleware.SetSessionCookie(w, r, id.SessionID, ttl)
	}
	return id
}
