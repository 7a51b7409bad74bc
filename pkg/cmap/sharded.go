package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Map is a concurrent-safe sharded map with string keys.
type Map[V any] struct {
	shards    []*shard[V]
	shardMask uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New creates a new sharded map with the default shard count.
func New[V any]() *Map[V] {
	return NewWithShards[V](DefaultShardCount)
}

// NewWithShards creates a new sharded map with the specified shard count.
// A count that is not a positive power of 2 falls back to DefaultShardCount.
func NewWithShards[V any](shardCount int) *Map[V] {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	m := &Map[V]{
		shards:    make([]*shard[V], shardCount),
		shardMask: uint32(shardCount - 1),
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

func (m *Map[V]) shardIndex(key string) uint32 {
	return murmur3.Sum32([]byte(key)) & m.shardMask
}

func (m *Map[V]) getShard(key string) *shard[V] {
	return m.shards[m.shardIndex(key)]
}

// Get retrieves a value by key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.getShard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set stores a key-value pair.
func (m *Map[V]) Set(key string, value V) {
	s := m.getShard(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// SetIfAbsent stores value only if key is missing. It returns the value now
// stored under key and whether it was inserted by this call.
func (m *Map[V]) SetIfAbsent(key string, value V) (V, bool) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[key]; ok {
		return existing, false
	}
	s.items[key] = value
	return value, true
}

// Delete removes a key.
func (m *Map[V]) Delete(key string) {
	s := m.getShard(key)
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Pop removes and returns the value stored under key.
func (m *Map[V]) Pop(key string) (V, bool) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return v, ok
}

// DeleteIf removes key only if match reports true for its current value.
func (m *Map[V]) DeleteIf(key string, match func(V) bool) bool {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok || !match(v) {
		return false
	}
	delete(s.items, key)
	return true
}

// Swap atomically removes oldKey and stores value under newKey. Readers never
// observe both keys present or both absent. It returns the value newKey held
// before, if any, so the caller can release it.
func (m *Map[V]) Swap(oldKey, newKey string, value V) (V, bool) {
	oi, ni := m.shardIndex(oldKey), m.shardIndex(newKey)
	first, second := oi, ni
	if first > second {
		first, second = second, first
	}

	m.shards[first].mu.Lock()
	defer m.shards[first].mu.Unlock()
	if second != first {
		m.shards[second].mu.Lock()
		defer m.shards[second].mu.Unlock()
	}

	old, s := m.shards[oi], m.shards[ni]
	displaced, ok := s.items[newKey]
	delete(old.items, oldKey)
	s.items[newKey] = value
	return displaced, ok
}

// Count returns the total number of items.
func (m *Map[V]) Count() int {
	count := 0
	for _, s := range m.shards {
		s.mu.RLock()
		count += len(s.items)
		s.mu.RUnlock()
	}
	return count
}

// Keys returns a snapshot of all keys. Keys added or removed while Keys runs
// may or may not be included.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	for _, s := range m.shards {
		s.mu.RLock()
		for k := range s.items {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	return keys
}

// Range calls fn for each item, one shard at a time, holding that shard's
// read lock. fn must not call back into the map. Returning false stops the
// iteration.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// ShardCount returns the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}

// ShardStats returns the number of items in each shard.
func (m *Map[V]) ShardStats() []int {
	stats := make([]int, len(m.shards))
	for i, s := range m.shards {
		s.mu.RLock()
		stats[i] = len(s.items)
		s.mu.RUnlock()
	}
	return stats
}
