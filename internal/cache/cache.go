// Package cache defines the TTL cache contract shared by the collection
// orchestrator and the trigger scorer, plus a sharded in-memory
// implementation. Components receive a Cache via their constructors so
// production deployments can swap in a distributed backend.
package cache

import (
	"time"
)

// Cache stores opaque byte payloads under string keys with per-entry
// TTLs. Expired entries are treated as absent on read and swept lazily
// on write.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	Len() int
}
