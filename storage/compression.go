package storage

import (
	"bytes"
	"encoding/gob"

	"github.com/golang/snappy"
)

// encodeValue gob-encodes a Value. Value has no interface fields, so this
// round-trips without type registration.
func encodeValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValue(raw []byte) (Value, error) {
	var v Value
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// maybeCompress gob-encodes v and, if compression is enabled and the
// encoded length meets the configured threshold, snappy-compresses it.
// It returns the stored payload, whether it was compressed, and the
// uncompressed encoded size (used as the entry's size-aware eviction cost).
func maybeCompress(cfg Config, v Value) (payload []byte, compressed bool, size int, err error) {
	raw, err := encodeValue(v)
	if err != nil {
		return nil, false, 0, err
	}
	size = len(raw)

	if !cfg.Compression || uint64(size) < cfg.CompressionThreshold {
		return raw, false, size, nil
	}
	return snappy.Encode(nil, raw), true, size, nil
}

// decompress reverses maybeCompress's envelope, returning the gob-encoded
// bytes for decodeValue. A decompression failure leaves the stored entry untouched and is reported
// to the caller as a request-scoped error rather than corrupting the entry.
func decompress(payload []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return payload, nil
	}
	return snappy.Decode(nil, payload)
}
