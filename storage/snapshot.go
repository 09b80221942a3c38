package storage

import "time"

// SnapshotEntry is the engine-internal entry re-exported for the
// persistence package, letting a snapshot preserve exact timestamps and
// the already-encoded (possibly compressed) payload instead of re-running
// admission control on load.
type SnapshotEntry struct {
	Key          string
	Payload      []byte
	Compressed   bool
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  uint64
	TTLExpiry    time.Time
	TTLDuration  time.Duration
	Size         int
}

// ExportEntries returns every live (non-expired) entry in a form suitable
// for gob encoding by the persistence package.
func (e *Engine) ExportEntries() []SnapshotEntry {
	now := time.Now()
	out := make([]SnapshotEntry, 0, e.totalEntries.Load())

	for _, sh := range e.shards {
		sh.mu.RLock()
		for k, ent := range sh.data {
			if ent.isExpired(now) {
				continue
			}
			out = append(out, SnapshotEntry{
				Key:          k,
				Payload:      ent.payload,
				Compressed:   ent.compressed,
				CreatedAt:    ent.createdAt,
				LastAccessed: ent.lastAccessed,
				AccessCount:  ent.accessCount,
				TTLExpiry:    ent.ttlExpiry,
				TTLDuration:  ent.ttlDuration,
				Size:         ent.size,
			})
		}
		sh.mu.RUnlock()
	}
	return out
}

// ImportEntries replaces the live store with entries, bypassing admission
// control entirely — a snapshot load is a trusted bulk restore, not a
// sequence of client SETs, so it must not trigger eviction.
func (e *Engine) ImportEntries(entries []SnapshotEntry) {
	e.Flush()

	for _, se := range entries {
		sh := e.shardFor(se.Key)
		sh.mu.Lock()
		sh.data[se.Key] = &entry{
			payload:      se.Payload,
			compressed:   se.Compressed,
			createdAt:    se.CreatedAt,
			lastAccessed: se.LastAccessed,
			accessCount:  se.AccessCount,
			ttlExpiry:    se.TTLExpiry,
			ttlDuration:  se.TTLDuration,
			size:         se.Size,
		}
		sh.mu.Unlock()
	}
	e.totalEntries.Add(int64(len(entries)))
}
