// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package uploads

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/daily-gallery/apperr"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, pngHeader)
	return b
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"photo.png", false},
		{"photo.JPG", false},
		{"photo.jpeg", false},
		{"anim.gif", false},
		{"script.svg", true},
		{"archive.tar.gz", true},
		{"noext", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !apperr.IsCode(err, apperr.CodeInvalidInput) {
				t.Errorf("Expected invalid_input, got %v", err)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my photo.jpg", "my_photo.jpg"},
		{"../../etc/passwd.png", "passwd.png"},
		{`C:\Users\me\pic.gif`, "pic.gif"},
		{".hidden.png", "hidden.png"},
		{"caf\u00e9 #1.jpg", "caf_1.jpg"},
		{"???", "image"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueName(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 23, 5, 0, time.UTC)

	a, err := UniqueName("paris.jpg", now)
	if err != nil {
		t.Fatalf("UniqueName failed: %v", err)
	}
	b, _ := UniqueName("paris.jpg", now)

	pattern := regexp.MustCompile(`^20250301_142305_[0-9a-f]{6}_paris\.jpg$`)
	if !pattern.MatchString(a) {
		t.Errorf("Unexpected name %q", a)
	}
	if a == b {
		t.Errorf("Expected distinct names, got %q twice", a)
	}
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:3318/", 1024)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	data := pngBytes(200)
	file, err := store.Save(context.Background(), "city view.png", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !strings.HasSuffix(file.Name, "_city_view.png") {
		t.Errorf("Unexpected stored name %q", file.Name)
	}
	if file.URL != "http://localhost:3318/uploads/"+file.Name {
		t.Errorf("Unexpected URL %q", file.URL)
	}

	written, err := os.ReadFile(filepath.Join(dir, file.Name))
	if err != nil {
		t.Fatalf("Stored file missing: %v", err)
	}
	if !bytes.Equal(written, data) {
		t.Error("Stored bytes differ from upload")
	}

	// Served back through the handler
	req := httptest.NewRequest(http.MethodGet, URLPrefix+file.Name, nil)
	w := httptest.NewRecorder()
	store.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() != len(data) {
		t.Errorf("Expected 200 with %d bytes, got %d with %d", len(data), w.Code, w.Body.Len())
	}
}

func TestLocalStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "", 1024)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	file, err := store.Save(context.Background(), "a.png", bytes.NewReader(pngBytes(100)))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(context.Background(), file.Name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, file.Name)); !os.IsNotExist(err) {
		t.Errorf("Expected file to be gone, stat returned %v", err)
	}

	// Deleting again is not an error
	if err := store.Delete(context.Background(), file.Name); err != nil {
		t.Errorf("Expected second Delete to succeed, got %v", err)
	}

	// Names cannot escape the upload directory
	outside := filepath.Join(t.TempDir(), "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(context.Background(), "../"+filepath.Base(filepath.Dir(outside))+"/keep.txt"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("Expected file outside upload dir to survive: %v", err)
	}
}

func TestLocalStoreRejects(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "", 1024)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	tests := []struct {
		name     string
		file     string
		data     []byte
		contains string
	}{
		{"too large", "big.png", pngBytes(2048), "1.0 KiB"},
		{"wrong extension", "doc.pdf", pngBytes(100), "not allowed"},
		{"not an image", "fake.png", []byte("just some text pretending"), "not an image"},
		{"empty", "empty.png", nil, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(context.Background(), tt.file, bytes.NewReader(tt.data))
			if !apperr.IsCode(err, apperr.CodeInvalidInput) {
				t.Fatalf("Expected invalid_input, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error mentioning %q, got %q", tt.contains, err.Error())
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected rejected uploads to leave no files, found %d", len(entries))
	}
}

func TestNewCloudinaryStoreRequiresCredentials(t *testing.T) {
	if _, err := NewCloudinaryStore("demo", "", "secret", 1024); err == nil {
		t.Error("Expected error for missing API key")
	}

	store, err := NewCloudinaryStore("demo", "key", "secret", 1024)
	if err != nil {
		t.Fatalf("NewCloudinaryStore failed: %v", err)
	}

	// Validation happens before any network call
	_, err = store.Save(context.Background(), "notes.txt", bytes.NewReader(pngBytes(10)))
	if !apperr.IsCode(err, apperr.CodeInvalidInput) {
		t.Errorf("Expected invalid_input, got %v", err)
	}
}
