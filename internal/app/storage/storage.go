/*
Package storage provides S3-compatible object storage for profile avatars.

Uploads normally go straight from the browser to the bucket through a presigned
PUT URL; the server validates the file name, type and size first and hands back
the object key and the public URL the profile should point at.
*/
package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the settings required to connect to the bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// PublicBaseURL is prepended to object keys to build public URLs. When empty
	// the endpoint and bucket are used.
	PublicBaseURL string
}

// ObjectInfo is the metadata of a stored object.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// StorageService is the object store used for avatars.
type StorageService interface {
	// PresignUpload returns a URL that accepts one PUT of the described object.
	PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error)

	// PresignDownload returns a time-limited GET URL for key.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Upload streams body to key.
	Upload(ctx context.Context, key, mimeType string, body io.Reader) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Stat returns the metadata of key, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

// NewStorageService returns the S3 implementation of StorageService.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	return newS3Client(ctx, cfg)
}
