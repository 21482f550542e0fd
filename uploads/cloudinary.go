// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/danielhkuo/daily-gallery/apperr"
)

// CloudinaryFolder is where gallery images are uploaded.
const CloudinaryFolder = "daily-gallery/images"

// CloudinaryStore uploads images to Cloudinary and returns their secure URL.
type CloudinaryStore struct {
	cld      *cloudinary.Cloudinary
	maxBytes int64
	now      func() time.Time
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string, maxBytes int64) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, originalName string, r io.Reader) (StoredFile, error) {
	ext, err := ValidateName(originalName)
	if err != nil {
		return StoredFile{}, err
	}
	body, err := readLimited(r, s.maxBytes)
	if err != nil {
		return StoredFile{}, err
	}
	// Buffer so an oversized file fails before anything is sent.
	data, err := io.ReadAll(body)
	if err != nil {
		return StoredFile{}, err
	}

	name, err := UniqueName(originalName, s.now())
	if err != nil {
		return StoredFile{}, apperr.Wrap(apperr.CodeInternal, "uploads.cloudinary.save", err)
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     strings.TrimSuffix(name, ext),
		Folder:       CloudinaryFolder,
		ResourceType: "image",
	})
	if err != nil {
		return StoredFile{}, apperr.Wrap(apperr.CodeStorageUnavailable, "uploads.cloudinary.save",
			fmt.Errorf("failed to upload to cloudinary: %w", err))
	}
	if result.Error.Message != "" {
		return StoredFile{}, apperr.New(apperr.CodeStorageUnavailable, "uploads.cloudinary.save", result.Error.Message)
	}

	slog.Info("upload stored", "name", name, "backend", "cloudinary", "bytes", len(data))
	return StoredFile{Name: name, URL: result.SecureURL}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, name string) error {
	publicID := CloudinaryFolder + "/" + strings.TrimSuffix(name, filepath.Ext(name))

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeStorageUnavailable, "uploads.cloudinary.delete",
			fmt.Errorf("failed to delete from cloudinary: %w", err))
	}
	if result.Error.Message != "" {
		return apperr.New(apperr.CodeStorageUnavailable, "uploads.cloudinary.delete", result.Error.Message)
	}

	slog.Info("upload deleted", "name", name, "backend", "cloudinary", "result", result.Result)
	return nil
}
