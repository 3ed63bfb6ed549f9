package providers

import "context"

// CacheProvider abstracts the byte-level cache used for derived projections
// such as visit preparation summaries. Keys carry their own invalidation:
// callers embed a content hash, so stale entries simply stop being read.
type CacheProvider interface {
	// Get returns the cached value or an error when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL in seconds.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
