// Command volatix-server runs a standalone Volatix cache instance,
// listening for TCP connections and periodically snapshotting to disk.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/volatixdb/volatix"
	"github.com/volatixdb/volatix/storage"
)

func main() {
	var (
		port                = flag.Int("port", 7878, "TCP port to listen on")
		snapshotPath        = flag.String("snapshot_path", "volatix.snapshot", "path to the snapshot file")
		snapshotInterval    = flag.Duration("snapshots_interval", 300*time.Second, "how often to write a snapshot to disk (0 disables periodic snapshots)")
		expirySweepInterval = flag.Duration("expiry_sweep_interval", time.Second, "how often to sweep for expired keys")
		shardCount          = flag.Int("shards", 64, "number of storage shards")
		maxCapacity         = flag.Int("max_capacity", 0, "maximum number of entries before eviction kicks in (0 means unlimited)")
		evictionPolicy      = flag.String("eviction_policy", "oldest", "eviction policy: oldest, lru, lfu, sizeaware")
		compression         = flag.Bool("compression", false, "enable value compression")
	)
	flag.Parse()

	policy, ok := storage.ParseEvictionPolicy(*evictionPolicy)
	if !ok {
		fmt.Fprintf(os.Stderr, "volatix-server: unknown eviction policy %q\n", *evictionPolicy)
		os.Exit(1)
	}

	storageCfg := storage.DefaultConfig()
	if *maxCapacity > 0 {
		storageCfg.MaxCapacity = uint64(*maxCapacity)
	}
	storageCfg.EvictionPolicy = policy
	storageCfg.Compression = *compression

	v, err := volatix.New(
		volatix.WithAddr(fmt.Sprintf(":%d", *port)),
		volatix.WithSnapshotPath(*snapshotPath),
		volatix.WithSnapshotInterval(*snapshotInterval),
		volatix.WithExpirySweepInterval(*expirySweepInterval),
		volatix.WithShardCount(*shardCount),
		volatix.WithStorageConfig(storageCfg),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "volatix-server: configuration error:", err)
		os.Exit(1)
	}

	if err := v.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "volatix-server: failed to start:", err)
		os.Exit(1)
	}
	log.Printf("volatix-server listening on %s (version %s)", v.Addr(), volatix.Version)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("volatix-server shutting down")
	if err := v.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "volatix-server: error during shutdown:", err)
		os.Exit(1)
	}
}
