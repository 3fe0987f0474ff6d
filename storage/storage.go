package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrKeyRequired    = errors.New("object key is required")
	ErrBucketRequired = errors.New("bucket name is required")
)

// Bucket is a single object storage location.
type Bucket interface {
	// Name returns the bucket name.
	Name() string

	// Upload stores body under key.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error

	// PresignGet returns a URL that allows anyone holding it to download
	// the object until ttl has elapsed.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}
