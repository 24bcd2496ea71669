package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"
)

// COSConfig holds COS-specific configuration.
type COSConfig struct {
	Bucket    string
	Region    string
	SecretID  string
	SecretKey string
	Domain    string // e.g., "myqcloud.com"
	Scheme    string // e.g., "https" or "http"
	// Endpoint overrides the bucket URL built from the fields above.
	Endpoint string
}

// COSStorage implements Storage interface for Tencent Cloud COS.
type COSStorage struct {
	client    *cos.Client
	bucketURL *url.URL
}

// NewCOSStorage creates a new COSStorage instance.
func NewCOSStorage(cfg *COSConfig) (*COSStorage, error) {
	if cfg.Bucket == "" || (cfg.Region == "" && cfg.Endpoint == "") {
		return nil, fmt.Errorf("bucket and region are required for COS storage")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("credentials are required for COS storage")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "myqcloud.com"
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}

	rawBucketURL := fmt.Sprintf("%s://%s.cos.%s.%s", scheme, cfg.Bucket, cfg.Region, domain)
	if cfg.Endpoint != "" {
		rawBucketURL = cfg.Endpoint
	}
	bucketURL, err := url.Parse(rawBucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})

	return &COSStorage{client: client, bucketURL: bucketURL}, nil
}

// Type returns StorageTypeCOS.
func (s *COSStorage) Type() StorageType { return StorageTypeCOS }

// Upload uploads data from reader to key.
func (s *COSStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	var opt *cos.ObjectPutOptions
	if contentType != "" {
		opt = &cos.ObjectPutOptions{
			ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{ContentType: contentType},
		}
	}
	if _, err := s.client.Object.Put(ctx, k, reader, opt); err != nil {
		return fmt.Errorf("failed to upload to COS: %w", err)
	}
	return nil
}

// Download downloads the object at key.
func (s *COSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Object.Get(ctx, k, nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to download from COS: %w", err)
	}
	return resp.Body, nil
}

// Delete deletes the object at key.
func (s *COSStorage) Delete(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	if _, err := s.client.Object.Delete(ctx, k, nil); err != nil && !cos.IsNotFoundError(err) {
		return fmt.Errorf("failed to delete from COS: %w", err)
	}
	return nil
}

// Exists checks if an object exists at key.
func (s *COSStorage) Exists(ctx context.Context, key string) (bool, error) {
	k, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	ok, err := s.client.Object.IsExist(ctx, k)
	if err != nil {
		return false, fmt.Errorf("failed to check existence in COS: %w", err)
	}
	return ok, nil
}

// GetURL returns the object URL for key.
func (s *COSStorage) GetURL(key string) string {
	return strings.TrimSuffix(s.bucketURL.String(), "/") + "/" + strings.TrimPrefix(key, "/")
}
