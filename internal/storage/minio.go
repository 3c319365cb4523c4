package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Provider abstracts the object store holding uploaded content files.
type Provider interface {
	Upload(ctx context.Context, file *multipart.FileHeader, prefix string) (string, error)
	UploadStream(ctx context.Context, reader io.Reader, size int64, objectName, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	GetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// MinioProvider stores content files in a MinIO (S3-compatible) bucket.
type MinioProvider struct {
	client *minio.Client
	bucket string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioProvider(cfg MinioConfig) (*MinioProvider, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioProvider{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores one multipart file under a random object name and returns
// the object key.
func (p *MinioProvider) Upload(ctx context.Context, file *multipart.FileHeader, prefix string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return p.UploadStream(ctx, src, file.Size, objectName, contentType)
}

func (p *MinioProvider) UploadStream(ctx context.Context, reader io.Reader, size int64, objectName, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, p.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return objectName, nil
}

func (p *MinioProvider) Delete(ctx context.Context, objectName string) error {
	err := p.client.RemoveObject(ctx, p.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GetURL returns a presigned download link for a stored object.
func (p *MinioProvider) GetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := p.client.PresignedGetObject(ctx, p.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return u.String(), nil
}
