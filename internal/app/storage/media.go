// Package storage keeps session recordings in an S3-compatible object store
// and hands the transcription client short-lived presigned URLs instead of
// raw credentials.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaStore resolves stored recordings for downstream processing.
type MediaStore interface {
	Upload(ctx context.Context, instructorID, filename string, r io.Reader, size int64, contentType string) (*UploadResult, error)
	ResolveURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadResult describes a stored recording.
type UploadResult struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// MinioConfig holds the object store connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Presigned URLs only need to outlive a single transcription download.
const resolveTTL = 15 * time.Minute

// MinioMediaStore implements MediaStore on MinIO.
type MinioMediaStore struct {
	client *minio.Client
	bucket string
}

// NewMinioMediaStore connects to the object store and ensures the bucket
// exists.
func NewMinioMediaStore(ctx context.Context, cfg MinioConfig) (*MinioMediaStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinioMediaStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioMediaStore) Upload(ctx context.Context, instructorID, filename string, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("sessions/%s/%d-%s%s",
		instructorID, time.Now().Unix(), uuid.New().String()[:8], filepath.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": filename,
			"instructor-id": instructorID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload recording: %w", err)
	}

	return &UploadResult{
		Key:        key,
		Name:       filename,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// ResolveURL returns a presigned GET URL for a stored recording. A key that
// is already an http(s) URL passes through unchanged so externally hosted
// recordings work without copying them into the bucket.
func (s *MinioMediaStore) ResolveURL(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, resolveTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign recording %q: %w", key, err)
	}
	return u.String(), nil
}

// Delete removes a stored recording. Externally hosted recordings (http(s)
// keys) are not ours to remove, so they are a no-op.
func (s *MinioMediaStore) Delete(ctx context.Context, key string) error {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete recording %q: %w", key, err)
	}
	return nil
}
