// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/daily-gallery/aggregate"
	"github.com/danielhkuo/daily-gallery/albums"
	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/attempts"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/identity"
	"github.com/danielhkuo/daily-gallery/middleware"
	"github.com/danielhkuo/daily-gallery/models"
	"github.com/danielhkuo/daily-gallery/stats"
	"github.com/danielhkuo/daily-gallery/testutil"
)

// services wires the real components against a fresh test database
type services struct {
	conn     *sql.DB
	store    *albums.Store
	ledger   *attempts.Ledger
	reporter *stats.Reporter
	resolver *identity.Resolver
}

func setupServices(t *testing.T) services {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	runner := db.NewRunner(conn, 10)
	store := albums.NewStore(runner)
	counter := aggregate.NewCounter(conn)
	ledger := attempts.NewLedger(runner, store, counter, testutil.TestHashSalt)

	return services{
		conn:     conn,
		store:    store,
		ledger:   ledger,
		reporter: stats.NewReporter(ledger, counter),
		resolver: identity.NewResolver(identity.NewMemoryStore(time.Hour)),
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code apperr.Code
		want int
	}{
		{apperr.CodeInvalidInput, http.StatusBadRequest},
		{apperr.CodeNotFound, http.StatusNotFound},
		{apperr.CodeConflict, http.StatusConflict},
		{apperr.CodeConcurrencyConflict, http.StatusConflict},
		{apperr.CodeStorageUnavailable, http.StatusServiceUnavailable},
		{apperr.CodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "caller mistake keeps message",
			err:         apperr.InvalidInput("op", "album_number must be >= 1"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "album_number must be >= 1",
		},
		{
			name:        "not found keeps message",
			err:         apperr.NotFound("op", "album 2025-03-01#1 not found"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "album 2025-03-01#1 not found",
		},
		{
			name:        "storage failure is hidden",
			err:         apperr.Wrap(apperr.CodeStorageUnavailable, "op", errors.New("dial tcp: refused")),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Failed to do thing",
		},
		{
			name:        "untagged error is internal",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to do thing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tt.err, "Failed to do thing")

			testutil.AssertStatus(t, w, tt.wantStatus)
			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, resp.Message)
			}
			if resp.Error != http.StatusText(tt.wantStatus) {
				t.Errorf("Expected error %q, got %q", http.StatusText(tt.wantStatus), resp.Error)
			}
		})
	}
}

func TestGetIdentity(t *testing.T) {
	s := setupServices(t)
	handler := NewIdentityHandler(s.resolver, time.Hour)

	t.Run("mints and sets cookie", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/identity", nil, nil)
		w := httptest.NewRecorder()
		handler.GetIdentity(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.IdentityResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Source != models.IdentityMinted || resp.UserID == "" {
			t.Fatalf("Expected minted id, got %+v", resp)
		}

		cookies := w.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookieName {
			t.Fatalf("Expected session cookie, got %v", cookies)
		}

		// Same cookie resolves to the same user
		again := testutil.MakeRequest("GET", "/api/identity", nil, nil)
		again.AddCookie(cookies[0])
		w2 := httptest.NewRecorder()
		handler.GetIdentity(w2, again)

		var resp2 models.IdentityResponse
		testutil.AssertJSON(t, w2, &resp2)
		if resp2.UserID != resp.UserID || resp2.Source != models.IdentitySession {
			t.Errorf("Expected session id %q, got %+v", resp.UserID, resp2)
		}
		if len(w2.Result().Cookies()) != 0 {
			t.Error("Expected no new cookie for a known session")
		}
	})

	t.Run("header wins", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/identity", nil, map[string]string{
			middleware.UserIDHeader: "  client-42 ",
		})
		w := httptest.NewRecorder()
		handler.GetIdentity(w, req)

		var resp models.IdentityResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.UserID != "  client-42 " || resp.Source != models.IdentityClient {
			t.Errorf("Expected client id verbatim, got %+v", resp)
		}
	})

	t.Run("query parameter", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/identity?user_id=q-7", nil, nil)
		w := httptest.NewRecorder()
		handler.GetIdentity(w, req)

		var resp models.IdentityResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.UserID != "q-7" {
			t.Errorf("Expected q-7, got %+v", resp)
		}
	})
}
