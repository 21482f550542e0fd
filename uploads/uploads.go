// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package uploads

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielhkuo/daily-gallery/apperr"
	"github.com/danielhkuo/daily-gallery/auth"
	"github.com/dustin/go-humanize"
)

// StoredFile is where an upload ended up.
type StoredFile struct {
	Name string
	URL  string
}

// Store persists uploaded image bytes.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (StoredFile, error)
	// Delete removes a file returned by Save. A missing file is not an error.
	Delete(ctx context.Context, name string) error
}

// AllowedExtensions lists the accepted image types, lowercase with the dot.
var AllowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ValidateName checks the extension of an uploaded file name and returns it.
func ValidateName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", apperr.InvalidInput("uploads.validate", "file name is empty")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !AllowedExtensions[ext] {
		return "", apperr.InvalidInput("uploads.validate", "file type %q not allowed (png, jpg, jpeg, gif)", ext)
	}
	return ext, nil
}

// SanitizeName reduces a client file name to a safe base name made of
// letters, digits, dots, dashes and underscores.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	clean := strings.TrimLeft(b.String(), "._")
	if clean == "" {
		return "image"
	}
	return clean
}

// UniqueName prefixes the sanitized name with a timestamp and a short random
// suffix, e.g. 20250301_142305_a1b2c3_paris.jpg.
func UniqueName(original string, now time.Time) (string, error) {
	suffix, err := auth.GenerateID(3)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", now.Format("20060102_150405"), suffix, SanitizeName(original)), nil
}

// readLimited reads at most max bytes and rejects anything larger or
// anything that does not sniff as an image.
func readLimited(r io.Reader, max int64) (io.Reader, error) {
	br := bufio.NewReader(io.LimitReader(r, max+1))
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, "uploads.read", err)
	}
	if len(head) == 0 {
		return nil, apperr.InvalidInput("uploads.read", "file is empty")
	}
	if ct := http.DetectContentType(head); !strings.HasPrefix(ct, "image/") {
		return nil, apperr.InvalidInput("uploads.read", "file content is %s, not an image", ct)
	}
	return &limitChecker{r: br, max: max}, nil
}

// limitChecker fails once more than max bytes have been read.
type limitChecker struct {
	r    io.Reader
	max  int64
	read int64
}

func (l *limitChecker) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.max {
		return n, TooLarge(l.max)
	}
	return n, err
}

// TooLarge is the error for an upload over the size limit.
func TooLarge(max int64) error {
	return apperr.InvalidInput("uploads.read", "image exceeds the %s limit", humanize.IBytes(uint64(max)))
}
