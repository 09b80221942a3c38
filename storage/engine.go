package storage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// entry is the engine's internal record for one key. The value lives
// encoded (and optionally snappy-compressed) in payload so that compressed
// and uncompressed entries share one code path on every access.
type entry struct {
	payload      []byte
	compressed   bool
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  uint64
	ttlExpiry    time.Time // zero value means no expiry
	ttlDuration  time.Duration
	size         int // uncompressed encoded length, used by SizeAware eviction
}

func (e *entry) isExpired(now time.Time) bool {
	return !e.ttlExpiry.IsZero() && !now.Before(e.ttlExpiry)
}

// shard is one lock-guarded partition of the keyspace.
type shard struct {
	mu   sync.RWMutex
	data map[string]*entry
}

// Stats are the process-wide counters named in the data model. They are
// updated with atomic.Int64 rather than under the shard locks so that
// summing them never requires a second lock, matching the sharding note in
// the design notes: "provided stats counters remain consistent".
type Stats struct {
	Hits             int64
	Misses           int64
	Evictions        int64
	ExpiredRemovals  int64
	TotalEntries     int64
}

// Engine is the sharded, concurrent storage engine. It owns the store,
// live config, and stats, and is the single collaborator the command
// dispatcher talks to.
type Engine struct {
	shards    []*shard
	shardMask uint64

	cfgMu sync.RWMutex
	cfg   Config

	hits            atomic.Int64
	misses          atomic.Int64
	evictions       atomic.Int64
	expiredRemovals atomic.Int64
	totalEntries    atomic.Int64

	logger Logger
}

// Logger is the minimal structured logging seam the engine and its
// background loops write through. Engines built without WithLogger use a
// no-op implementation so logging is always safe to call.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EngineOption configures NewEngine.
type EngineOption func(*Engine)

// WithShardCount sets the number of shards, rounded up to the next power of
// two. The default is 64, matching the teacher's default shard count.
func WithShardCount(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			count := nextPowerOf2(n)
			e.shards = make([]*shard, count)
			e.shardMask = uint64(count - 1)
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConfig sets the engine's starting live configuration.
func WithConfig(cfg Config) EngineOption {
	return func(e *Engine) { e.cfg = cfg }
}

// NewEngine builds a ready-to-use engine with 64 shards and
// DefaultConfig() unless overridden by options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:    DefaultConfig(),
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shards == nil {
		e.shards = make([]*shard, 64)
		e.shardMask = 63
	}
	for i := range e.shards {
		e.shards[i] = &shard{data: make(map[string]*entry)}
	}
	return e
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

func (e *Engine) shardFor(key string) *shard {
	return e.shards[xxhash.Sum64String(key)&e.shardMask]
}

func (e *Engine) config() Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg
}

// Get looks up a key, decompressing its value if needed. Expired entries
// are removed in place and reported as NotFound, the same outcome as an
// absent key.
func (e *Engine) Get(key string) (Value, error) {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.Lock()
	ent, ok := sh.data[key]
	if !ok {
		sh.mu.Unlock()
		e.misses.Add(1)
		return Value{}, &Error{Kind: NotFound, Message: "key not found"}
	}
	if ent.isExpired(now) {
		delete(sh.data, key)
		sh.mu.Unlock()
		e.totalEntries.Add(-1)
		e.expiredRemovals.Add(1)
		return Value{}, &Error{Kind: NotFound, Message: "key not found"}
	}

	ent.lastAccessed = now
	ent.accessCount++
	payload, compressed := ent.payload, ent.compressed
	sh.mu.Unlock()

	raw, err := decompress(payload, compressed)
	if err != nil {
		return Value{}, &Error{Kind: Internal, Message: "failed to decompress value: " + err.Error()}
	}
	v, err := decodeValue(raw)
	if err != nil {
		return Value{}, &Error{Kind: Internal, Message: "failed to decode value: " + err.Error()}
	}

	e.hits.Add(1)
	return v, nil
}

// Set inserts or overwrites key with v, applying the global TTL. Insertion
// of a brand new key runs eviction first if it would exceed MaxCapacity;
// overwriting an existing key never triggers eviction.
func (e *Engine) Set(key string, v Value) error {
	return e.setWithTTL(key, v, e.config().GlobalTTL)
}

// SetWithTTL is Set with an explicit per-key TTL overriding the global one.
// A zero or negative ttl expires the key immediately upon insertion.
func (e *Engine) SetWithTTL(key string, v Value, ttl time.Duration) error {
	return e.setWithTTL(key, v, ttl)
}

func (e *Engine) setWithTTL(key string, v Value, ttl time.Duration) error {
	cfg := e.config()
	payload, compressed, size, err := maybeCompress(cfg, v)
	if err != nil {
		return &Error{Kind: Internal, Message: "failed to encode value: " + err.Error()}
	}

	now := time.Now()
	ent := &entry{
		payload:      payload,
		compressed:   compressed,
		createdAt:    now,
		lastAccessed: now,
		ttlDuration:  ttl,
		size:         size,
	}
	if ttl > 0 {
		ent.ttlExpiry = now.Add(ttl)
	} else {
		ent.ttlExpiry = now // already expired; lazily removed on next touch
	}

	sh := e.shardFor(key)
	sh.mu.Lock()
	_, overwrite := sh.data[key]
	if !overwrite {
		sh.mu.Unlock()
		e.admit(cfg)
		sh.mu.Lock()
		// Re-check: a concurrent Set of this same new key may have won the
		// race and already inserted it while the lock was released for
		// admission, which would otherwise double-count totalEntries.
		_, overwrite = sh.data[key]
	}
	sh.data[key] = ent
	sh.mu.Unlock()

	if !overwrite {
		e.totalEntries.Add(1)
	}
	return nil
}

// admit runs eviction, one victim at a time, until the store is under
// MaxCapacity (leaving room for the one entry about to be inserted).
func (e *Engine) admit(cfg Config) {
	if cfg.MaxCapacity == 0 {
		return
	}
	for uint64(e.totalEntries.Load()) >= cfg.MaxCapacity {
		if !e.evictOne(cfg.EvictionPolicy) {
			return // store is empty; nothing left to evict
		}
	}
}

// Delete removes key if present, reporting whether it existed.
func (e *Engine) Delete(key string) bool {
	sh := e.shardFor(key)
	sh.mu.Lock()
	_, existed := sh.data[key]
	if existed {
		delete(sh.data, key)
	}
	sh.mu.Unlock()
	if existed {
		e.totalEntries.Add(-1)
	}
	return existed
}

// Exists reports key's presence without touching hit/miss stats, dropping
// it first if it has expired.
func (e *Engine) Exists(key string) bool {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	ent, ok := sh.data[key]
	if !ok {
		return false
	}
	if ent.isExpired(now) {
		delete(sh.data, key)
		e.totalEntries.Add(-1)
		e.expiredRemovals.Add(1)
		return false
	}
	return true
}
