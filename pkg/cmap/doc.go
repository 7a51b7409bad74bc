// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards by their murmur3
// hash; each shard has its own RWMutex, so operations on keys in different
// shards never contend.
//
// Usage:
//
//	m := cmap.New[*Client]()
//	m.Set(token, c)
//	c, ok := m.Get(token)
//	m.Swap(oldToken, newToken, c)
//
// All operations are safe for concurrent use. Swap is the only operation
// that holds two shard locks; it takes them in shard index order.
package cmap
