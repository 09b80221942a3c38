package storage

import "time"

// evictOne selects exactly one victim under the given policy and removes
// it, returning false only when the store is empty. Selection is a linear
// scan across every shard (there is no secondary index, per the design
// notes), taking one shard's lock at a time so it never competes with a
// writer holding two shard locks at once.
func (e *Engine) evictOne(policy EvictionPolicy) bool {
	victimShard, victimKey, found := e.selectVictim(policy)
	if !found {
		return false
	}

	sh := e.shards[victimShard]
	sh.mu.Lock()
	if _, ok := sh.data[victimKey]; ok {
		delete(sh.data, victimKey)
		sh.mu.Unlock()
	} else {
		// Raced with a concurrent delete/expiry of the same key; the caller's
		// admit loop will simply re-scan on its next iteration.
		sh.mu.Unlock()
		return true
	}

	e.totalEntries.Add(-1)
	e.evictions.Add(1)
	return true
}

// selectVictim scans every shard under a read lock and returns the
// (shard index, key) of the chosen victim for policy. It never mutates.
func (e *Engine) selectVictim(policy EvictionPolicy) (shardIdx int, key string, found bool) {
	var (
		bestKey      string
		bestShard    int
		haveBest     bool
		bestCreated  time.Time
		bestAccessed time.Time
		bestCount    uint64
		bestSize     int
	)

	for i, sh := range e.shards {
		sh.mu.RLock()
		for k, ent := range sh.data {
			if !haveBest {
				haveBest = true
				bestKey, bestShard = k, i
				bestCreated, bestAccessed, bestCount, bestSize = ent.createdAt, ent.lastAccessed, ent.accessCount, ent.size
				continue
			}
			if victimLess(policy, ent.createdAt, ent.lastAccessed, ent.accessCount, ent.size,
				bestCreated, bestAccessed, bestCount, bestSize) {
				bestKey, bestShard = k, i
				bestCreated, bestAccessed, bestCount, bestSize = ent.createdAt, ent.lastAccessed, ent.accessCount, ent.size
			}
		}
		sh.mu.RUnlock()
	}

	return bestShard, bestKey, haveBest
}

// victimLess reports whether candidate beats the current best choice under
// policy (i.e. candidate should replace best as the victim).
func victimLess(
	policy EvictionPolicy,
	candCreated, candAccessed time.Time, candCount uint64, candSize int,
	bestCreated, bestAccessed time.Time, bestCount uint64, bestSize int,
) bool {
	switch policy {
	case LRU:
		return candAccessed.Before(bestAccessed)
	case LFU:
		if candCount != bestCount {
			return candCount < bestCount
		}
		return candAccessed.Before(bestAccessed)
	case SizeAware:
		if candSize != bestSize {
			return candSize > bestSize
		}
		return candCreated.Before(bestCreated)
	case Oldest:
		fallthrough
	default:
		return candCreated.Before(bestCreated)
	}
}
