package driven

import (
	"context"
	"time"
)

// ObjectStore lists and fetches source files from an object-storage bucket.
// The bucket is fixed at construction; keys are paths within it.
type ObjectStore interface {
	// List returns all object keys in the bucket, optionally restricted
	// to a folder prefix. Listing is recursive.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Fetch downloads an object's full content.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Stat returns metadata for a single object.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// Ping validates the bucket is reachable and accessible.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ObjectInfo describes one object in the bucket.
type ObjectInfo struct {
	// Key is the object's path within the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ContentType is the stored content type, when the service provides one.
	ContentType string

	// LastModified is the object's modification timestamp.
	LastModified time.Time
}
