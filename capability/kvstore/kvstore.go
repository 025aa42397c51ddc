// Package kvstore defines the KVStore capability (§6.1): TTL-scoped
// get/set/keys used by the semantic cache.
package kvstore

import (
	"context"
	"time"
)

// Store is a TTL-aware key-value capability.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Keys returns every key matching prefix, used by the semantic cache to
	// enumerate "vector:*" entries for similarity search.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}
