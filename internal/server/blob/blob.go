// Package blob defines the object-store boundary used by the services and
// its S3 implementation. It carries no business logic.
package blob

import "context"

// Store is the narrow object-store contract the core consumes. Missing
// objects are reported as common.ErrNotFound; other failures wrap
// common.ErrUpstreamStore.
type Store interface {
	Put(ctx context.Context, bucket, key string, body []byte) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Head checks object existence without fetching content.
	Head(ctx context.Context, bucket, key string) error
	Delete(ctx context.Context, bucket, key string) error
	DeleteBatch(ctx context.Context, bucket string, keys []string) error
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	// ObjectURL derives the public URL for a stored object.
	ObjectURL(bucket, key string) string
}
