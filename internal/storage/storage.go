// Package storage keeps exported run reports and event logs in object
// storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mandrykarina/GC/pkg/config"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload stores the contents of reader under key.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download opens the object at key. A missing key fails with NOT_FOUND.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete deletes the object at key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns a location for key that can be shown to users.
	GetURL(key string) string

	// Type returns the backend type.
	Type() StorageType
}

// StorageType represents the type of storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeCOS   StorageType = "cos"
	StorageTypeS3    StorageType = "s3"
)

// NewStorage creates a new Storage instance based on the configuration.
func NewStorage(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch StorageType(cfg.Type) {
	case StorageTypeCOS:
		return NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
			Endpoint:  cfg.Endpoint,
		})
	case StorageTypeS3:
		return NewS3Storage(ctx, &S3Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.SecretID,
			SecretAccessKey: cfg.SecretKey,
			PathStyle:       cfg.PathStyle,
		})
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return fmt.Errorf("storage config is nil")
	}

	storageType := StorageType(cfg.Type)

	// Empty type defaults to local
	if storageType == "" {
		storageType = StorageTypeLocal
	}

	switch storageType {
	case StorageTypeLocal:
		if cfg.LocalPath == "" {
			return fmt.Errorf("local storage path is required")
		}
	case StorageTypeCOS:
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" && cfg.Endpoint == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	case StorageTypeS3:
		if cfg.Bucket == "" {
			return fmt.Errorf("S3 bucket is required")
		}
		if (cfg.SecretID == "") != (cfg.SecretKey == "") {
			return fmt.Errorf("S3 access key id and secret must be set together")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	return nil
}

// cleanKey normalizes key to a slash separated relative path and rejects
// keys that escape the storage root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." || strings.Contains(key, "..") {
		return "", apperrors.Newf(apperrors.CodeInvalidInput, "invalid storage key %q", key)
	}
	return k, nil
}

func notFound(key string) error {
	return apperrors.Newf(apperrors.CodeNotFound, "object not found: %s", key)
}
