package storage

import (
	"context"
	"io"
)

// ObjectStorage is where export files are written.
type ObjectStorage interface {
	// Upload writes an object, replacing any existing one.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns where the object can be found.
	GetURL(key string) string
}
