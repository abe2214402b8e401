// Package storage keeps backyard images (profile photo, event logo) in an
// S3-compatible bucket such as MinIO or Cloudflare R2.
package storage

import (
	"context"
	"io"
)

// UploadResult describes the stored object after a successful upload.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the seam the backyard service uses for image objects.
// Upload streams the object under the given key; Delete removes it, for
// replacing an image or rolling back a failed database update.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
