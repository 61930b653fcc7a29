package fluentmap

import "context"

// Cache stores built configurations between runs so that mappings are not
// recompiled on every start. Keys are opaque to the cache.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}
