package persistence

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/volatixdb/volatix/storage"
)

// snapshotVersion tags the on-disk format. Compatibility across Volatix
// versions is not required by the spec; a version mismatch on load is
// treated as a fatal, unreadable snapshot.
const snapshotVersion = 1

// snapshotHeader is the first value gob-encoded into a snapshot file,
// followed by one storage.SnapshotEntry per live key at the time the
// snapshot was taken.
type snapshotHeader struct {
	Version int
	Config  storage.Config
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Snapshotter owns the on-disk snapshot file for one engine: loading it at
// startup and re-writing it on a timer or on demand.
type Snapshotter struct {
	path     string
	engine   *storage.Engine
	interval time.Duration
	logger   storage.Logger
}

// Option configures a Snapshotter built by NewSnapshotter.
type Option func(*Snapshotter)

// WithLogger sets the snapshotter's logger.
func WithLogger(logger storage.Logger) Option {
	return func(s *Snapshotter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSnapshotter builds a Snapshotter writing to path on the given
// interval. An interval of zero disables the periodic loop; SaveNow and
// Load remain usable regardless.
func NewSnapshotter(path string, engine *storage.Engine, interval time.Duration, opts ...Option) *Snapshotter {
	s := &Snapshotter{
		path:     path,
		engine:   engine,
		interval: interval,
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the snapshot file at path, if one exists, replacing the
// engine's store and configuration with its contents. A missing file is
// not an error — the engine simply starts empty. Any other read/decode
// failure is returned so the caller can treat it as the fatal "unreadable
// snapshot that exists" startup condition named in the spec's exit codes.
func (s *Snapshotter) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)

	var header snapshotHeader
	if err := dec.Decode(&header); err != nil {
		return fmt.Errorf("decode snapshot header: %w", err)
	}
	if header.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	var entries []storage.SnapshotEntry
	for {
		var entry storage.SnapshotEntry
		if err := dec.Decode(&entry); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("decode snapshot entry: %w", err)
		}
		entries = append(entries, entry)
	}

	s.engine.SetConfig(header.Config)
	s.engine.ImportEntries(entries)
	return nil
}

// SaveNow performs one synchronous snapshot: copy-under-lock via
// ExportEntries, gob-encode outside the lock, write to a temp sibling
// file, fsync, then atomically rename over the snapshot path. On any
// failure the temp file is removed and the error is returned; the caller
// (the periodic loop, or a final shutdown snapshot) decides whether that's
// fatal.
func (s *Snapshotter) SaveNow() error {
	cfg := s.engine.Config()
	entries := s.engine.ExportEntries()

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := fmt.Sprintf("%s.tmp.%d", s.path, time.Now().UnixNano())
	if err := s.writeSnapshot(tmp, cfg, entries); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

func (s *Snapshotter) writeSnapshot(tmp string, cfg storage.Config, entries []storage.SnapshotEntry) error {
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(snapshotHeader{Version: snapshotVersion, Config: cfg}); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot header: %w", err)
	}
	for i := range entries {
		if err := enc.Encode(&entries[i]); err != nil {
			f.Close()
			return fmt.Errorf("encode snapshot entry: %w", err)
		}
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync temp snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	return nil
}

// Run blocks, taking a snapshot every interval, until stop is closed — at
// which point it takes one final snapshot before returning. It is meant to
// be launched as the dedicated snapshotter task named in the concurrency
// model. A non-positive interval disables the periodic snapshots: Run then
// only waits for stop and takes the final snapshot.
func (s *Snapshotter) Run(stop <-chan struct{}) {
	if s.interval <= 0 {
		<-stop
		if err := s.SaveNow(); err != nil {
			s.logger.Error("final snapshot failed", "error", err)
		}
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			if err := s.SaveNow(); err != nil {
				s.logger.Error("final snapshot failed", "error", err)
			}
			return
		case <-ticker.C:
			if err := s.SaveNow(); err != nil {
				s.logger.Error("snapshot failed", "error", err)
			} else {
				s.logger.Debug("snapshot written", "path", s.path)
			}
		}
	}
}
