package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const defaultS3Region = "us-east-1"

// S3Config holds settings for S3 and S3 compatible stores.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
	// AccessKeyID and SecretAccessKey are optional. When empty the default
	// AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// S3Storage implements Storage on an S3 bucket.
type S3Storage struct {
	client   *s3.Client
	bucket   string
	endpoint string
	region   string
}

// NewS3Storage creates an S3Storage.
func NewS3Storage(ctx context.Context, cfg *S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for S3 storage")
	}
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Storage{client: client, bucket: cfg.Bucket, endpoint: cfg.Endpoint, region: region}, nil
}

// Type returns StorageTypeS3.
func (s *S3Storage) Type() StorageType { return StorageTypeS3 }

// Upload buffers reader and puts it under key. The body is buffered so the
// request can be signed over plain HTTP endpoints.
func (s *S3Storage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// Download gets the object at key.
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	return out.Body, nil
}

// Delete deletes the object at key.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// Exists reports whether key exists, using HeadObject.
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	k, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence in S3: %w", err)
	}
	return true, nil
}

// GetURL returns an s3:// URL, or the path-style object URL when a custom
// endpoint is configured.
func (s *S3Storage) GetURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.endpoint != "" {
		return strings.TrimSuffix(s.endpoint, "/") + "/" + s.bucket + "/" + key
	}
	return "s3://" + s.bucket + "/" + key
}

func isS3NotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
