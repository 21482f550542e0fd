// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/daily-gallery/auth"
	"github.com/danielhkuo/daily-gallery/models"
)

// Identity is a resolved user. Source is models.IdentityClient,
// models.IdentitySession or models.IdentityMinted.
type Identity struct {
	UserID    string
	SessionID string
	Source    string
}

// Minted reports whether the user id was created by this call.
func (i Identity) Minted() bool {
	return i.Source == models.IdentityMinted
}

type Resolver struct {
	store SessionStore
}

func NewResolver(store SessionStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve determines the user for a request. A non-blank client id is
// used verbatim; otherwise the session is looked up, and as a last resort
// a new id is minted and saved under the session. Resolve never fails:
// store errors are logged and a fresh id is returned.
func (r *Resolver) Resolve(ctx context.Context, clientID, sessionID string) Identity {
	if strings.TrimSpace(clientID) != "" {
		return Identity{UserID: clientID, SessionID: sessionID, Source: models.IdentityClient}
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID != "" {
		userID, ok, err := r.store.Get(ctx, sessionID)
		if err != nil {
			slog.Warn("session lookup failed, minting new user id", "error", err)
		} else if ok {
			return Identity{UserID: userID, SessionID: sessionID, Source: models.IdentitySession}
		}
	}

	userID := mintUserID()
	if sessionID == "" {
		token, err := auth.GenerateSessionToken()
		if err != nil {
			slog.Warn("failed to generate session token", "error", err)
			return Identity{UserID: userID, Source: models.IdentityMinted}
		}
		sessionID = token
	}

	if err := r.store.Put(ctx, sessionID, userID); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}

	// A concurrent request may have saved the session first.
	if stored, ok, err := r.store.Get(ctx, sessionID); err == nil && ok && stored != userID {
		return Identity{UserID: stored, SessionID: sessionID, Source: models.IdentitySession}
	}

	slog.Info("minted user id", "user_id", userID)
	return Identity{UserID: userID, SessionID: sessionID, Source: models.IdentityMinted}
}

func mintUserID() string {
	if id, err := auth.GenerateUserID(); err == nil {
		return id
	}
	if id, err := auth.GenerateID(16); err == nil {
		return id
	}
	return fmt.Sprintf("anon-%x", time.Now().UnixNano())
}
