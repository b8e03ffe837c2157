// Package service contains the business logic layer.
// Note: User identity, OAuth, and sessions are handled by the external
// auth provider. The UserID in services references provider user IDs.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"

	appconfig "github.com/editaja/editaja-api/internal/config"
)

// Storage key prefixes. Uploads are user source photos, results are
// generated images re-hosted from the generation API.
const (
	prefixUploads = "uploads"
	prefixResults = "results"
	prefixStyles  = "styles"
)

// maxRehostSize caps the size of a generated image downloaded from the
// generation API before re-hosting.
const maxRehostSize = 25 << 20

// StorageService handles object storage operations (Tigris/S3-compatible).
type StorageService struct {
	client     *s3.Client
	httpClient *http.Client
	bucket     string
	publicURL  string
	enabled    bool
	logger     *slog.Logger
}

// NewStorageService creates a new storage service.
func NewStorageService(cfg *appconfig.Config, logger *slog.Logger) (*StorageService, error) {
	if !cfg.StorageEnabled {
		logger.Info("storage service disabled - no bucket configured")
		return &StorageService{
			httpClient: &http.Client{Timeout: 30 * time.Second},
			enabled:    false,
			logger:     logger,
		}, nil
	}

	// Load AWS config with static credentials
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.StorageRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with custom endpoint for S3-compatible storage (Tigris, MinIO, etc.)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true // Required for some S3-compatible services
	})

	logger.Info("storage service initialized",
		"bucket", cfg.StorageBucket,
		"endpoint", cfg.StorageEndpoint,
	)

	return &StorageService{
		client:     client,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		bucket:     cfg.StorageBucket,
		publicURL:  strings.TrimRight(cfg.StoragePublicURL, "/"),
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled returns whether storage is configured and available.
func (s *StorageService) IsEnabled() bool {
	return s.enabled
}

// Bucket returns the configured bucket name.
func (s *StorageService) Bucket() string {
	return s.bucket
}

// UploadImage stores image bytes under the given prefix and returns
// the public URL. Kind selects the key prefix ("uploads", "results",
// "styles").
func (s *StorageService) UploadImage(ctx context.Context, kind, filename string, data []byte, contentType string) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("storage is not enabled")
	}

	key := s.objectKey(kind, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Info("uploaded image",
		"key", key,
		"size_bytes", len(data),
	)

	return s.PublicURL(key), nil
}

// RehostImage downloads an image from the generation API and stores a
// copy in the bucket, returning the hosted URL. When storage is
// disabled the source URL is returned unchanged; callers own retry
// decisions when the re-host fails.
func (s *StorageService) RehostImage(ctx context.Context, sourceURL, kind string) (string, error) {
	if !s.enabled {
		return sourceURL, nil
	}

	data, contentType, err := s.download(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to download generated image: %w", err)
	}

	return s.UploadImage(ctx, kind, path.Base(sourceURL), data, contentType)
}

// DeleteByURL removes an object previously returned by UploadImage.
// URLs outside the bucket's public base are ignored.
func (s *StorageService) DeleteByURL(ctx context.Context, url string) error {
	if !s.enabled {
		return nil
	}

	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.logger.Info("deleted image", "key", key)
	return nil
}

// PublicURL builds the public URL for a bucket key.
func (s *StorageService) PublicURL(key string) string {
	return s.publicURL + "/" + key
}

// objectKey builds a collision-free key: {prefix}/{ulid}-{filename}.
func (s *StorageService) objectKey(kind, filename string) string {
	switch kind {
	case prefixUploads, prefixResults, prefixStyles:
	default:
		kind = prefixUploads
	}
	name := path.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return fmt.Sprintf("%s/%s-%s", kind, ulid.Make().String(), name)
}

// keyFromURL reverses PublicURL.
func (s *StorageService) keyFromURL(url string) (string, bool) {
	base := s.publicURL + "/"
	if !strings.HasPrefix(url, base) {
		return "", false
	}
	return strings.TrimPrefix(url, base), true
}

func (s *StorageService) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRehostSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxRehostSize {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxRehostSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
