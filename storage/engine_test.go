package storage_test

import (
	"sync"
	"testing"
	"time"

	"github.com/volatixdb/volatix/storage"
)

func newTestEngine(opts ...storage.EngineOption) *storage.Engine {
	return storage.NewEngine(append([]storage.EngineOption{storage.WithShardCount(4)}, opts...)...)
}

func TestSetGetRoundTrip(t *testing.T) {
	e := newTestEngine()

	if err := e.Set("name", storage.TextValue("John")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := e.Get("name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Kind != storage.KindText || v.Text != "John" {
		t.Fatalf("got %+v, want Text(John)", v)
	}
}

func TestGetMissingIncrementsMisses(t *testing.T) {
	e := newTestEngine()

	if _, err := e.Get("missing"); !storage.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if got := e.GetStats().Misses; got != 1 {
		t.Fatalf("misses = %d, want 1", got)
	}
}

func TestOverwriteDoesNotChangeCardinality(t *testing.T) {
	e := newTestEngine()
	_ = e.Set("k", storage.IntValue(1))
	_ = e.Set("k", storage.IntValue(2))

	if got := e.GetStats().TotalEntries; got != 1 {
		t.Fatalf("total_entries = %d, want 1", got)
	}
}

func TestTTLExpirySetWithTTL(t *testing.T) {
	e := newTestEngine()

	if err := e.SetWithTTL("a", storage.IntValue(1), time.Second); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}

	ttl, err := e.GetTTL("a")
	if err != nil {
		t.Fatalf("GetTTL: %v", err)
	}
	if ttl < 0 || ttl > 1 {
		t.Fatalf("ttl = %d, want in [0,1]", ttl)
	}

	time.Sleep(1100 * time.Millisecond)

	if _, err := e.Get("a"); !storage.IsNotFound(err) {
		t.Fatalf("expected expired key to be NotFound, got %v", err)
	}
	if got := e.GetStats().ExpiredRemovals; got < 1 {
		t.Fatalf("expired_removals = %d, want >= 1", got)
	}
}

func TestSetWithTTLZeroExpiresImmediately(t *testing.T) {
	e := newTestEngine()
	_ = e.SetWithTTL("a", storage.IntValue(1), 0)

	if _, err := e.Get("a"); !storage.IsNotFound(err) {
		t.Fatalf("expected immediate expiry, got %v", err)
	}
}

func TestIncrCreatesAsOne(t *testing.T) {
	e := newTestEngine()

	n, err := e.Incr("counter")
	if err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if n != 1 {
		t.Fatalf("Incr on missing key = %d, want 1", n)
	}

	n, err = e.Incr("counter")
	if err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if n != 2 {
		t.Fatalf("Incr = %d, want 2", n)
	}
}

func TestIncrOnTextFailsTypeMismatch(t *testing.T) {
	e := newTestEngine()
	_ = e.Set("k", storage.TextValue("42"))

	if _, err := e.Incr("k"); err == nil {
		t.Fatal("expected TypeMismatch, got nil")
	} else if se, ok := err.(*storage.Error); !ok || se.Kind != storage.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestRenameNoOpOnSameKey(t *testing.T) {
	e := newTestEngine()
	_ = e.Set("k", storage.IntValue(1))

	if err := e.Rename("k", "k"); err != nil {
		t.Fatalf("Rename(k,k): %v", err)
	}
}

func TestRenameConflict(t *testing.T) {
	e := newTestEngine()
	_ = e.Set("a", storage.IntValue(1))
	_ = e.Set("b", storage.IntValue(2))

	if err := e.Rename("a", "b"); err == nil {
		t.Fatal("expected Conflict, got nil")
	} else if se, ok := err.(*storage.Error); !ok || se.Kind != storage.Conflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestRenameMissingSource(t *testing.T) {
	e := newTestEngine()
	if err := e.Rename("missing", "dst"); !storage.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestEvictNowOldest(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:      time.Hour,
		MaxCapacity:    1_000_000,
		EvictionPolicy: storage.Oldest,
	}))

	_ = e.Set("a", storage.IntValue(1))
	time.Sleep(5 * time.Millisecond)
	_ = e.Set("b", storage.IntValue(2))

	before := e.GetStats().TotalEntries
	removed := e.EvictNow()
	if removed != 1 {
		t.Fatalf("EvictNow removed %d, want 1", removed)
	}
	if got := e.GetStats().TotalEntries; got != before-1 {
		t.Fatalf("total_entries after EvictNow = %d, want %d", got, before-1)
	}
	if _, err := e.Get("a"); !storage.IsNotFound(err) {
		t.Fatal("expected oldest key 'a' to be evicted")
	}
	if got := e.GetStats().Evictions; got != 1 {
		t.Fatalf("evictions = %d, want 1", got)
	}
}

func TestAdmissionControlRespectsCapacity(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:      time.Hour,
		MaxCapacity:    2,
		EvictionPolicy: storage.Oldest,
	}))

	_ = e.Set("a", storage.IntValue(1))
	_ = e.Set("b", storage.IntValue(2))
	_ = e.Set("c", storage.IntValue(3))

	if got := e.GetStats().TotalEntries; got > 2 {
		t.Fatalf("total_entries = %d, want <= 2", got)
	}
	if got := e.GetStats().Evictions; got != 1 {
		t.Fatalf("evictions = %d, want 1", got)
	}
}

func TestLRUEvictsLeastRecentlyAccessed(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:      time.Hour,
		MaxCapacity:    1_000_000,
		EvictionPolicy: storage.LRU,
	}))

	_ = e.Set("a", storage.IntValue(1))
	_ = e.Set("b", storage.IntValue(2))
	if _, err := e.Get("b"); err != nil {
		t.Fatalf("Get(b): %v", err)
	}

	e.EvictNow()

	if _, err := e.Get("a"); !storage.IsNotFound(err) {
		t.Fatal("expected LRU to evict 'a' (not recently accessed)")
	}
}

func TestLFUEvictsLeastFrequentlyUsed(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:      time.Hour,
		MaxCapacity:    1_000_000,
		EvictionPolicy: storage.LFU,
	}))

	_ = e.Set("a", storage.IntValue(1))
	_ = e.Set("b", storage.IntValue(2))

	// Access 'b' twice so its access count exceeds 'a's, leaving 'a' the
	// least frequently used of the two.
	if _, err := e.Get("b"); err != nil {
		t.Fatalf("Get(b): %v", err)
	}
	if _, err := e.Get("b"); err != nil {
		t.Fatalf("Get(b): %v", err)
	}

	e.EvictNow()

	if _, err := e.Get("a"); !storage.IsNotFound(err) {
		t.Fatal("expected LFU to evict 'a' (least frequently used)")
	}
	if _, err := e.Get("b"); err != nil {
		t.Fatalf("expected 'b' to survive eviction, got %v", err)
	}
}

func TestSizeAwareEvictsLargest(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:      time.Hour,
		MaxCapacity:    1_000_000,
		EvictionPolicy: storage.SizeAware,
	}))

	_ = e.Set("small", storage.TextValue("x"))
	_ = e.Set("big", storage.TextValue(string(make([]byte, 4096))))

	e.EvictNow()

	if _, err := e.Get("big"); !storage.IsNotFound(err) {
		t.Fatal("expected SizeAware to evict the larger entry 'big'")
	}
	if _, err := e.Get("small"); err != nil {
		t.Fatalf("expected 'small' to survive eviction, got %v", err)
	}
}

func TestSetListAndGetListRoundTrip(t *testing.T) {
	e := newTestEngine()

	err := e.SetList(map[string]storage.Value{
		"a": storage.IntValue(1),
		"b": storage.TextValue("two"),
	})
	if err != nil {
		t.Fatalf("SetList: %v", err)
	}

	values, ok := e.GetList([]string{"a", "b", "missing"})
	if !ok[0] || values[0].Int != 1 {
		t.Fatalf("GetList[0] = %+v, ok=%v, want Int(1), true", values[0], ok[0])
	}
	if !ok[1] || values[1].Text != "two" {
		t.Fatalf("GetList[1] = %+v, ok=%v, want Text(two), true", values[1], ok[1])
	}
	if ok[2] {
		t.Fatalf("GetList[2] ok = true, want false for missing key")
	}
}

func TestDeleteListRemovesPresentKeysOnly(t *testing.T) {
	e := newTestEngine()
	_ = e.Set("a", storage.IntValue(1))
	_ = e.Set("b", storage.IntValue(2))

	n := e.DeleteList([]string{"a", "b", "missing"})
	if n != 2 {
		t.Fatalf("DeleteList removed %d, want 2", n)
	}
	if e.Exists("a") || e.Exists("b") {
		t.Fatal("expected 'a' and 'b' to be gone after DeleteList")
	}
}

func TestSetMapBulkInsert(t *testing.T) {
	e := newTestEngine()

	err := e.SetMap(map[string]storage.Value{
		"x": storage.BoolValue(true),
		"y": storage.FloatValue(1.5),
	})
	if err != nil {
		t.Fatalf("SetMap: %v", err)
	}

	vx, err := e.Get("x")
	if err != nil || vx.Kind != storage.KindBool || !vx.Bool {
		t.Fatalf("Get(x) = %+v, %v; want Bool(true)", vx, err)
	}
	vy, err := e.Get("y")
	if err != nil || vy.Kind != storage.KindFloat || vy.Float != 1.5 {
		t.Fatalf("Get(y) = %+v, %v; want Float(1.5)", vy, err)
	}
}

func TestExpireDeltaExceedingRemainingTTLExpiresImmediately(t *testing.T) {
	e := newTestEngine()
	if err := e.SetWithTTL("a", storage.IntValue(1), 2*time.Second); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}

	// A negative delta far larger than the remaining TTL pushes the new
	// expiry into the past, so the key is expected to expire immediately.
	if err := e.Expire("a", -10); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	if _, err := e.Get("a"); !storage.IsNotFound(err) {
		t.Fatal("expected key to expire immediately after an over-large negative delta")
	}
	if got := e.GetStats().ExpiredRemovals; got < 1 {
		t.Fatalf("expired_removals = %d, want >= 1", got)
	}
}

func TestExpireExtendsWithinRemainingTTL(t *testing.T) {
	e := newTestEngine()
	if err := e.SetWithTTL("a", storage.IntValue(1), time.Second); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}

	if err := e.Expire("a", 10); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	ttl, err := e.GetTTL("a")
	if err != nil {
		t.Fatalf("GetTTL: %v", err)
	}
	if ttl < 10 {
		t.Fatalf("ttl = %d, want >= 10 after extending", ttl)
	}
}

func TestExpireMissingKeyReturnsNotFound(t *testing.T) {
	e := newTestEngine()
	if err := e.Expire("missing", 10); !storage.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestConcurrentSetOfSameNewKeyDoesNotDoubleCount(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:      time.Hour,
		MaxCapacity:    1_000_000,
		EvictionPolicy: storage.Oldest,
	}))

	const goroutines = 32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(n int) {
			defer wg.Done()
			_ = e.Set("shared-key", storage.IntValue(int64(n)))
		}(i)
	}
	wg.Wait()

	if got := e.GetStats().TotalEntries; got != 1 {
		t.Fatalf("total_entries = %d, want 1 after concurrent Set of the same new key", got)
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:            time.Hour,
		MaxCapacity:          1_000_000,
		EvictionPolicy:       storage.Oldest,
		Compression:          true,
		CompressionThreshold: 8,
	}))

	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte(i % 251)
	}

	if err := e.Set("blob", storage.BytesValue(big)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	info, err := e.Dump("blob")
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !info.Compressed {
		t.Fatal("expected large value to be stored compressed")
	}

	v, err := e.Get("blob")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(v.Bytes) != len(big) {
		t.Fatalf("round-tripped length = %d, want %d", len(v.Bytes), len(big))
	}
}

func TestSmallValuesNeverCompressed(t *testing.T) {
	e := newTestEngine(storage.WithConfig(storage.Config{
		GlobalTTL:            time.Hour,
		MaxCapacity:          1_000_000,
		EvictionPolicy:       storage.Oldest,
		Compression:          true,
		CompressionThreshold: 4096,
	}))

	_ = e.Set("k", storage.TextValue("short"))
	info, err := e.Dump("k")
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if info.Compressed {
		t.Fatal("expected small value to remain uncompressed")
	}
}

func TestFlushPreservesConfigAndCounters(t *testing.T) {
	e := newTestEngine()
	_ = e.Set("a", storage.IntValue(1))
	_, _ = e.Get("a")
	_, _ = e.Get("missing")

	e.Flush()

	if got := e.GetStats().TotalEntries; got != 0 {
		t.Fatalf("total_entries after Flush = %d, want 0", got)
	}
	if got := e.GetStats().Hits; got != 1 {
		t.Fatalf("hits after Flush = %d, want 1 (preserved)", got)
	}
}

func TestConfSetValidatesEvictionPolicy(t *testing.T) {
	e := newTestEngine()

	if err := e.ConfSet(storage.ConfNameEvictPolicy, "BOGUS"); err == nil {
		t.Fatal("expected ConfigError for invalid policy")
	}
	if err := e.ConfSet(storage.ConfNameEvictPolicy, "LRU"); err != nil {
		t.Fatalf("ConfSet(LRU): %v", err)
	}
	v, err := e.ConfGet(storage.ConfNameEvictPolicy)
	if err != nil || v != "LRU" {
		t.Fatalf("ConfGet = %q, %v; want LRU, nil", v, err)
	}
}

func TestConfResetRestoresDefaults(t *testing.T) {
	e := newTestEngine()
	_ = e.ConfSet(storage.ConfNameMaxCapacity, "5")
	e.ConfReset()

	v, _ := e.ConfGet(storage.ConfNameMaxCapacity)
	if v != "1000000" {
		t.Fatalf("ConfGet(MAXCAPACITY) after reset = %q, want 1000000", v)
	}
}

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	e := newTestEngine()
	_ = e.Set("a", storage.IntValue(1))
	_ = e.Set("b", storage.TextValue("hello"))

	entries := e.ExportEntries()

	fresh := newTestEngine()
	fresh.ImportEntries(entries)

	va, err := fresh.Get("a")
	if err != nil || va.Int != 1 {
		t.Fatalf("Get(a) after import = %+v, %v", va, err)
	}
	vb, err := fresh.Get("b")
	if err != nil || vb.Text != "hello" {
		t.Fatalf("Get(b) after import = %+v, %v", vb, err)
	}
}
