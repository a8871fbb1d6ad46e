package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

// Memory is an in-process Cache sharded by key hash so concurrent
// readers and writers rarely contend on the same lock.
type Memory struct {
	shards  [shardCount]shard
	nowFunc func() time.Time
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.nowFunc = f
	}
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{nowFunc: time.Now}
	for i := range m.shards {
		m.shards[i].entries = make(map[string]entry)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &m.shards[h.Sum32()%shardCount]
}

// Get returns the value for key if present and unexpired.
func (m *Memory) Get(key string) ([]byte, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || m.nowFunc().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl, then sweeps the key's shard of
// any expired entries.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	now := m.nowFunc()
	s := m.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// Delete removes key if present.
func (m *Memory) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	total := 0
	for i := range m.shards {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].entries)
		m.shards[i].mu.RUnlock()
	}
	return total
}
