// Package objectstore provides the domain contract for binary attachment
// storage. The S3 implementation lives in infrastructure.
package objectstore

import (
	"context"
	"io"
	"time"
)

// Store persists binary attachments (part drawings, 3D models, generated
// PDFs) under opaque string keys.
type Store interface {
	// Put uploads an object, overwriting any existing object at key.
	Put(ctx context.Context, key, contentType string, body io.Reader) error

	// Get downloads the object at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PresignedURL returns a time-limited download URL for key.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
