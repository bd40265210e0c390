package minio

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/live627/elkarte.net/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinioProvider struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

type StoredObject struct {
	ObjectName  string    `json:"object_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
}

func NewMinioProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*MinioProvider, error) {
	minioURL := cfg.MinioURL
	if !strings.HasPrefix(minioURL, "http://") && !strings.HasPrefix(minioURL, "https://") {
		minioURL = "https://" + minioURL
	}

	u, err := url.Parse(minioURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse minio URL: %w", err)
	}
	secure := u.Scheme == "https"

	logger.Info("Initializing MinIO", zap.String("endpoint", u.Host), zap.Bool("secure", secure))

	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
	}
	tr.MaxIdleConnsPerHost = 64

	// minio.New takes host:port, never a URL.
	client, err := minio.New(u.Host, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.MinioUser, cfg.MinioPassword, ""),
		Secure:    secure,
		Transport: tr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	provider := &MinioProvider{
		client: client,
		bucket: cfg.MinioBucket,
		logger: logger,
	}

	if err := provider.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return provider, nil
}

func (m *MinioProvider) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		m.logger.Error("BucketExists error", zap.Error(err), zap.String("bucket", m.bucket))
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		m.logger.Info("Created MinIO bucket", zap.String("bucket", m.bucket))
	}

	return nil
}

func (m *MinioProvider) PutObject(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*StoredObject, error) {
	info, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	m.logger.Info("Object stored",
		zap.String("object_name", objectName),
		zap.Int64("size", info.Size),
	)

	return &StoredObject{
		ObjectName:  objectName,
		Size:        info.Size,
		ContentType: contentType,
		StoredAt:    time.Now().UTC(),
	}, nil
}

func (m *MinioProvider) GeneratePresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

func (m *MinioProvider) DeleteObject(ctx context.Context, objectName string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	m.logger.Info("Object deleted", zap.String("object_name", objectName))
	return nil
}

// DeleteObjectsOlderThan prunes objects under prefix whose last
// modification is older than maxAge.
func (m *MinioProvider) DeleteObjectsOlderThan(ctx context.Context, prefix string, maxAge time.Duration) (int, error) {
	objectsCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	deleted := 0
	for object := range objectsCh {
		if object.Err != nil {
			return deleted, object.Err
		}
		if time.Since(object.LastModified) <= maxAge {
			continue
		}
		if err := m.DeleteObject(ctx, object.Key); err != nil {
			m.logger.Warn("Failed to delete old object",
				zap.String("object", object.Key),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	return deleted, nil
}

func (m *MinioProvider) GetBucket() string {
	return m.bucket
}

// GenerateObjectName builds a dated, collision free key under prefix.
func GenerateObjectName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s%s", strings.TrimSuffix(prefix, "/"), now.Format("2006/01/02"), uuid.New().String(), ext)
}
