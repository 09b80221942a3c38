// Package persistence implements Volatix's snapshot durability: loading
// the store and configuration from disk at startup, and periodically
// writing them back out through a temp-file-plus-atomic-rename sequence
// so a crash mid-write never corrupts the on-disk snapshot.
package persistence
