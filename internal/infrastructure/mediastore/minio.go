package mediastore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// MinIOConfig object storage settings
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Region skips the bucket location lookup when set
	Region string
}

// MinIOStore uploads images to an S3 compatible bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates the client; call EnsureBucket before the first upload
func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("MinIO is not configured")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("MinIO bucket is empty")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Save uploads the image and returns "<bucket>/<key>"
func (s *MinIOStore) Save(ctx context.Context, product entity.Product, img *entity.ImageData) (string, error) {
	key := objectKey(product, img)
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Bytes)
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(img.Bytes), int64(len(img.Bytes)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", &entity.ExternalServiceError{Service: "minio", Op: "upload " + key, Err: err}
	}
	return s.bucket + "/" + key, nil
}
