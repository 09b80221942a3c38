package storage

import (
	"time"
	"unsafe"
)

// Keys returns a snapshot of every live (non-expired) key, in no
// particular order.
func (e *Engine) Keys() []string {
	now := time.Now()
	keys := make([]string, 0)
	for _, sh := range e.shards {
		sh.mu.RLock()
		for k, ent := range sh.data {
			if !ent.isExpired(now) {
				keys = append(keys, k)
			}
		}
		sh.mu.RUnlock()
	}
	return keys
}

// Flush removes every entry, zeroing total_entries while leaving
// configuration and the hit/miss/eviction counters untouched.
func (e *Engine) Flush() {
	for _, sh := range e.shards {
		sh.mu.Lock()
		n := len(sh.data)
		sh.data = make(map[string]*entry)
		sh.mu.Unlock()
		if n > 0 {
			e.totalEntries.Add(-int64(n))
		}
	}
}

// SetList bulk-inserts a batch of key/value pairs, in no particular order,
// each participating independently in admission control.
func (e *Engine) SetList(pairs map[string]Value) error {
	for k, v := range pairs {
		if err := e.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// SetMap is an alias of SetList kept distinct at the dispatcher level to
// mirror the SETMAP wire command; the engine operation is identical.
func (e *Engine) SetMap(pairs map[string]Value) error {
	return e.SetList(pairs)
}

// GetList looks up each key in order, returning a positional slice where
// absent keys are reported via ok[i] == false. Each lookup participates in
// hit/miss accounting exactly like Get.
func (e *Engine) GetList(keys []string) ([]Value, []bool) {
	values := make([]Value, len(keys))
	ok := make([]bool, len(keys))
	for i, k := range keys {
		v, err := e.Get(k)
		if err == nil {
			values[i] = v
			ok[i] = true
		}
	}
	return values, ok
}

// DeleteList deletes every key in keys, returning the count actually
// removed.
func (e *Engine) DeleteList(keys []string) int64 {
	var count int64
	for _, k := range keys {
		if e.Delete(k) {
			count++
		}
	}
	return count
}

// Rename moves the entry at old to new. It fails with NotFound if old is
// absent, or Conflict if new already exists — except the no-op case where
// old == new, which succeeds without change whenever old exists.
func (e *Engine) Rename(oldKey, newKey string) error {
	if oldKey == newKey {
		if !e.Exists(oldKey) {
			return &Error{Kind: NotFound, Message: "key not found"}
		}
		return nil
	}

	oldSh := e.shardFor(oldKey)
	newSh := e.shardFor(newKey)

	// Lock both shards in a fixed global order to avoid deadlocking against
	// a concurrent rename of the opposite pair of keys.
	first, second := oldSh, newSh
	if shardLess(newSh, oldSh) {
		first, second = newSh, oldSh
	}
	first.mu.Lock()
	if second != first {
		second.mu.Lock()
	}
	defer func() {
		if second != first {
			second.mu.Unlock()
		}
		first.mu.Unlock()
	}()

	ent, ok := oldSh.data[oldKey]
	if !ok || ent.isExpired(time.Now()) {
		return &Error{Kind: NotFound, Message: "key not found"}
	}
	if _, exists := newSh.data[newKey]; exists {
		return &Error{Kind: Conflict, Message: "rename target already exists"}
	}

	delete(oldSh.data, oldKey)
	newSh.data[newKey] = ent
	return nil
}

// shardLess gives shard pointers a stable, arbitrary total order so
// Rename can always lock two shards in the same global order.
func shardLess(a, b *shard) bool {
	return uintptr(unsafe.Pointer(a)) < uintptr(unsafe.Pointer(b))
}

// Incr adds 1 to the Int value at key, creating it as Int(1) if absent.
// A non-Int existing value fails with TypeMismatch.
func (e *Engine) Incr(key string) (int64, error) {
	return e.addDelta(key, 1)
}

// Decr subtracts 1 from the Int value at key, creating it as Int(-1) if
// absent.
func (e *Engine) Decr(key string) (int64, error) {
	return e.addDelta(key, -1)
}

func (e *Engine) addDelta(key string, delta int64) (int64, error) {
	sh := e.shardFor(key)
	now := time.Now()

	sh.mu.Lock()
	ent, ok := sh.data[key]
	if ok && !ent.isExpired(now) {
		raw, err := decompress(ent.payload, ent.compressed)
		if err != nil {
			sh.mu.Unlock()
			return 0, &Error{Kind: Internal, Message: "failed to decompress value: " + err.Error()}
		}
		v, err := decodeValue(raw)
		if err != nil {
			sh.mu.Unlock()
			return 0, &Error{Kind: Internal, Message: "failed to decode value: " + err.Error()}
		}
		if v.Kind != KindInt {
			sh.mu.Unlock()
			return 0, &Error{Kind: TypeMismatch, Message: "value is not an integer"}
		}

		next := v.Int + delta
		cfg := e.config()
		payload, compressed, size, err := maybeCompress(cfg, IntValue(next))
		if err != nil {
			sh.mu.Unlock()
			return 0, &Error{Kind: Internal, Message: "failed to encode value: " + err.Error()}
		}
		ent.payload, ent.compressed, ent.size = payload, compressed, size
		ent.lastAccessed = now
		ent.accessCount++
		sh.mu.Unlock()
		return next, nil
	}
	sh.mu.Unlock()

	if err := e.Set(key, IntValue(delta)); err != nil {
		return 0, err
	}
	return delta, nil
}
