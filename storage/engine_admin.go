package storage

import "time"

// GetStats returns a point-in-time copy of the process-wide counters.
// total_entries is read directly off the atomic counter, so it always
// mirrors the live store cardinality without a full scan.
func (e *Engine) GetStats() Stats {
	return Stats{
		Hits:            e.hits.Load(),
		Misses:          e.misses.Load(),
		Evictions:       e.evictions.Load(),
		ExpiredRemovals: e.expiredRemovals.Load(),
		TotalEntries:    e.totalEntries.Load(),
	}
}

// ResetStats zeroes every counter except total_entries, which must keep
// mirroring the live store cardinality.
func (e *Engine) ResetStats() {
	e.hits.Store(0)
	e.misses.Store(0)
	e.evictions.Store(0)
	e.expiredRemovals.Store(0)
}

// EntryInfo is the metadata snapshot returned by Dump.
type EntryInfo struct {
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  uint64
	Size         int
	Compressed   bool
	TTLRemaining time.Duration
}

// Dump returns entry metadata for key without touching hit/miss stats or
// last_accessed.
func (e *Engine) Dump(key string) (EntryInfo, error) {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	ent, ok := sh.data[key]
	if !ok || ent.isExpired(now) {
		return EntryInfo{}, &Error{Kind: NotFound, Message: "key not found"}
	}

	var remaining time.Duration
	if !ent.ttlExpiry.IsZero() {
		remaining = ent.ttlExpiry.Sub(now)
	}

	return EntryInfo{
		CreatedAt:    ent.createdAt,
		LastAccessed: ent.lastAccessed,
		AccessCount:  ent.accessCount,
		Size:         ent.size,
		Compressed:   ent.compressed,
		TTLRemaining: remaining,
	}, nil
}

// ConfGet reads a single live config value.
func (e *Engine) ConfGet(name string) (string, error) {
	cfg := e.config()
	v, ok := cfg.ConfGet(name)
	if !ok {
		return "", &Error{Kind: ConfigError, Message: "unknown config name " + name}
	}
	return v, nil
}

// ConfSet validates and atomically applies one config value.
func (e *Engine) ConfSet(name, value string) error {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	return e.cfg.ConfSet(name, value)
}

// ConfReset restores every config knob to its factory default.
func (e *Engine) ConfReset() {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	e.cfg = DefaultConfig()
}

// ConfOptions returns every live config value.
func (e *Engine) ConfOptions() map[string]string {
	return e.config().ConfOptions()
}

// Config returns a copy of the engine's current live configuration, used by
// the persistence layer when writing a snapshot.
func (e *Engine) Config() Config {
	return e.config()
}

// SetConfig atomically replaces the engine's live configuration, used by the
// persistence layer when loading a snapshot at startup.
func (e *Engine) SetConfig(cfg Config) {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	e.cfg = cfg
}
