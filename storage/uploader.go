package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the object store used for tournament posters.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL builds the public URL for a stored key. Returns "" when the
	// store has no public base configured.
	GetPublicURL(key string) string
}
