package volatix

import (
	"fmt"
	"sync"

	"github.com/volatixdb/volatix/persistence"
	"github.com/volatixdb/volatix/server"
	"github.com/volatixdb/volatix/storage"
)

// Volatix wires a storage engine, a TCP server, and a snapshot persister
// into one runnable cache instance.
type Volatix struct {
	cfg *config

	engine      *storage.Engine
	server      *server.Server
	snapshotter *persistence.Snapshotter

	expiryStop   chan struct{}
	snapshotStop chan struct{}
	wg           sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// New builds a Volatix from the given options but does not start it;
// call Start to load any existing snapshot and begin serving.
func New(opts ...Option) (*Volatix, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	adapter := storageLoggerAdapter{logger: cfg.logger}

	engine := storage.NewEngine(
		storage.WithShardCount(cfg.shardCount),
		storage.WithConfig(cfg.storageConfig),
		storage.WithLogger(adapter),
	)

	srv := server.NewServer(cfg.addr, engine, server.WithLogger(adapter))
	snap := persistence.NewSnapshotter(cfg.snapshotPath, engine, cfg.snapshotInterval,
		persistence.WithLogger(adapter))

	return &Volatix{
		cfg:         cfg,
		engine:      engine,
		server:      srv,
		snapshotter: snap,
	}, nil
}

// Start loads the snapshot file (if any), begins accepting connections,
// and launches the background expiry-sweep and snapshotter tasks. A
// failure to load an existing-but-unreadable snapshot, or to bind the
// listening address, is fatal and returned to the caller.
func (v *Volatix) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.started {
		return nil
	}

	if err := v.snapshotter.Load(); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := v.server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	v.expiryStop = make(chan struct{})
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.engine.RunExpiryLoop(v.expiryStop, v.cfg.expirySweepInterval)
	}()

	v.snapshotStop = make(chan struct{})
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.snapshotter.Run(v.snapshotStop)
	}()

	v.started = true
	v.cfg.logger.Info("volatix started", Field{Key: "addr", Value: v.server.Addr()})
	return nil
}

// Addr returns the server's actual listening address.
func (v *Volatix) Addr() string {
	return v.server.Addr()
}

// Engine exposes the underlying storage engine for embedders that want
// direct access alongside the TCP surface.
func (v *Volatix) Engine() *storage.Engine {
	return v.engine
}

// Stats merges the engine's own Stats with the server's connection-level
// counters.
func (v *Volatix) Stats() map[string]int64 {
	stats := v.server.Stats()
	engineStats := v.engine.GetStats()
	stats["hits"] = engineStats.Hits
	stats["misses"] = engineStats.Misses
	stats["evictions"] = engineStats.Evictions
	stats["expired_removals"] = engineStats.ExpiredRemovals
	stats["total_entries"] = engineStats.TotalEntries
	return stats
}

// Close stops the background expiry and snapshot loops (the snapshotter
// takes one final snapshot as it stops), stops the server, and waits for
// every goroutine to exit. Close is idempotent.
func (v *Volatix) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true

	if !v.started {
		return nil
	}

	close(v.expiryStop)
	close(v.snapshotStop)
	err := v.server.Stop()
	v.wg.Wait()
	return err
}
