// Package storage implements Volatix's concurrent, in-memory storage
// engine: the sharded key/value store, TTL and eviction machinery,
// optional value compression, and the live configuration surface.
//
// The engine shards its keyspace across a fixed number of independently
// locked partitions selected by a hash of the key, so readers and writers
// on unrelated keys never contend.
//
// Basic usage:
//
//	engine := storage.NewEngine()
//	err := engine.Set("key", storage.TextValue("value"))
//	value, err := engine.Get("key")
//
// The package supports:
//   - Thread-safe, sharded operations
//   - Lazy and proactive TTL expiry
//   - Oldest/LRU/LFU/SizeAware eviction policies
//   - Threshold-gated snappy compression
//   - Atomically-swappable live configuration
package storage
