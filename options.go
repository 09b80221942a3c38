package volatix

import (
	"time"

	"github.com/volatixdb/volatix/storage"
)

// config holds the configuration for a Volatix server, built up by Option
// functions and consumed once in New.
type config struct {
	addr string

	snapshotPath     string
	snapshotInterval time.Duration

	shardCount          int
	expirySweepInterval time.Duration
	storageConfig       storage.Config

	logger Logger
}

// defaultConfig returns a configuration with the defaults named in the
// configuration surface: port 7878, a 300s snapshot interval, and the
// storage engine's own factory defaults.
func defaultConfig() *config {
	return &config{
		addr:                ":7878",
		snapshotPath:        "volatix.snapshot",
		snapshotInterval:    300 * time.Second,
		shardCount:          64,
		expirySweepInterval: time.Second,
		storageConfig:       storage.DefaultConfig(),
		logger:              defaultLogger{},
	}
}

// Option configures a Volatix server.
type Option func(*config) error

// WithAddr sets the TCP listen address (default ":7878").
//
// Example:
//
//	volatix.New(volatix.WithAddr(":6380"))
func WithAddr(addr string) Option {
	return func(c *config) error {
		if addr == "" {
			return &ConfigError{Field: "addr", Reason: "must not be empty"}
		}
		c.addr = addr
		return nil
	}
}

// WithSnapshotPath sets the snapshot file path (default "volatix.snapshot"
// next to the working directory).
func WithSnapshotPath(path string) Option {
	return func(c *config) error {
		if path == "" {
			return &ConfigError{Field: "snapshotPath", Reason: "must not be empty"}
		}
		c.snapshotPath = path
		return nil
	}
}

// WithSnapshotInterval sets how often the background snapshotter task
// writes the store to disk (default 300s). Zero disables periodic
// snapshotting; SaveNow and the final shutdown snapshot still apply.
func WithSnapshotInterval(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return &ConfigError{Field: "snapshotInterval", Reason: "must not be negative"}
		}
		c.snapshotInterval = d
		return nil
	}
}

// WithExpirySweepInterval sets how often the background expirer walks the
// store for proactive TTL removal (default 1s).
func WithExpirySweepInterval(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return &ConfigError{Field: "expirySweepInterval", Reason: "must be positive"}
		}
		c.expirySweepInterval = d
		return nil
	}
}

// WithShardCount sets the number of shards the storage engine partitions
// its keyspace into (default 64).
func WithShardCount(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return &ConfigError{Field: "shardCount", Reason: "must be positive"}
		}
		c.shardCount = n
		return nil
	}
}

// WithStorageConfig sets the engine's starting live configuration
// (global TTL, max capacity, eviction policy, compression), overriding
// storage.DefaultConfig().
func WithStorageConfig(cfg storage.Config) Option {
	return func(c *config) error {
		c.storageConfig = cfg
		return nil
	}
}

// WithLogger sets the logger used by the engine, server, and snapshotter.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &ConfigError{Field: "logger", Reason: "must not be nil"}
		}
		c.logger = logger
		return nil
	}
}
