// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielhkuo/daily-gallery/apperr"
)

// URLPrefix is the path local uploads are served under.
const URLPrefix = "/uploads/"

// LocalStore writes uploads to a directory served at URLPrefix.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
	now      func() time.Time
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (StoredFile, error) {
	if _, err := ValidateName(originalName); err != nil {
		return StoredFile{}, err
	}
	body, err := readLimited(r, s.maxBytes)
	if err != nil {
		return StoredFile{}, err
	}

	name, err := UniqueName(originalName, s.now())
	if err != nil {
		return StoredFile{}, apperr.Wrap(apperr.CodeInternal, "uploads.local.save", err)
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, apperr.Wrap(apperr.CodeStorageUnavailable, "uploads.local.save", err)
	}

	_, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(path)
		if apperr.IsCode(err, apperr.CodeInvalidInput) {
			return StoredFile{}, err
		}
		return StoredFile{}, apperr.Wrap(apperr.CodeStorageUnavailable, "uploads.local.save", err)
	}

	slog.Info("upload stored", "name", name, "dir", s.dir)
	return StoredFile{Name: name, URL: s.baseURL + URLPrefix + name}, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperr.Wrap(apperr.CodeStorageUnavailable, "uploads.local.delete", err)
	}
	return nil
}

// Handler serves stored files under URLPrefix.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}
