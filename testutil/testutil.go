// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/daily-gallery/auth"
	"github.com/danielhkuo/daily-gallery/cliparse"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/models"
)

// TestHashSalt is the salt used for user id hashing in tests
const TestHashSalt = "test-hash-salt"

// SetupTestDB creates a fresh test database with the full schema.
// Tests use a SQLite file in t.TempDir(); set TEST_DATABASE_URL to run
// against PostgreSQL instead.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return SetupTestDBPools(t, 1)[0]
}

// SetupTestDBPools opens n independent connection pools on one fresh test
// database. Transactions from different pools run against each other the
// way separate server processes would.
func SetupTestDBPools(t *testing.T, n int) []*sql.DB {
	t.Helper()
	ctx := context.Background()

	dialect, url := db.DialectSQLite, filepath.Join(t.TempDir(), "gallery_test.db")
	if env := os.Getenv("TEST_DATABASE_URL"); env != "" {
		dialect, url = db.DialectPostgres, env
	}

	pools := make([]*sql.DB, n)
	for i := range pools {
		conn, err := db.Open(ctx, dialect, url)
		if err != nil {
			t.Fatalf("Failed to open test database: %v", err)
		}
		t.Cleanup(func() { conn.Close() })
		pools[i] = conn
	}

	if dialect == db.DialectPostgres {
		// Clean up tables before each test
		for _, table := range db.Tables {
			if _, err := pools[0].Exec("DROP TABLE IF EXISTS " + table + " CASCADE"); err != nil {
				t.Fatalf("Failed to clean database: %v", err)
			}
		}
	}

	if err := db.CreateSchema(ctx, pools[0]); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return pools
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file:test.db",
		DatabaseType:   db.DialectSQLite,
		HashSalt:       TestHashSalt,
		UploadDir:      "./uploads",
		MaxUploadBytes: cliparse.DefaultMaxUploadBytes,
		SessionTTL:     cliparse.DefaultSessionTTL,
		TxMaxAttempts:  cliparse.DefaultTxMaxAttempts,
	}
}

// CreateTestAlbum inserts an empty album row and returns its key
func CreateTestAlbum(t *testing.T, conn *sql.DB, date string, number int) models.AlbumKey {
	t.Helper()

	key := models.AlbumKey{Date: date, Number: number}
	_, err := conn.Exec(`
		INSERT INTO album (album_date, album_number, title, created_at)
		VALUES ($1, $2, '', $3)
	`, key.Date, key.Number, db.Now())
	if err != nil {
		t.Fatalf("Failed to create test album: %v", err)
	}

	return key
}

// CreateTestImage inserts an active image, scheduled at position when key
// is non-nil, and returns its ID
func CreateTestImage(t *testing.T, conn *sql.DB, title string, key *models.AlbumKey, position int) string {
	t.Helper()

	imageID, _ := auth.GenerateID(12)
	var (
		date   *string
		number *int
		pos    *int
	)
	if key != nil {
		date, number, pos = &key.Date, &key.Number, &position
	}

	_, err := conn.Exec(`
		INSERT INTO image (id, file_name, stored_name, url, title, description, active, album_date, album_number, position, created_at)
		VALUES ($1, $2, $3, $4, $5, '', TRUE, $6, $7, $8, $9)
	`, imageID, title+".jpg", imageID+".jpg", "/uploads/"+imageID+".jpg", title, date, number, pos, db.Now())
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}

	return imageID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
