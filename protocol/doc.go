// Package protocol implements the RESP3-subset wire protocol used between
// Volatix clients and the server.
//
// This package provides streaming parsers and writers that are
// memory-efficient and suitable for high-throughput connections. The codec
// is a pure function of its input buffer: it never blocks beyond reading
// from the underlying io.Reader, and never touches the storage engine.
//
// Basic usage:
//
//	reader := protocol.NewReader(conn)
//	for {
//		value, err := reader.ReadNext()
//		if err != nil {
//			break
//		}
//		// Process value
//	}
//
// The package supports the RESP3 subset named in the wire specification:
//   - Simple strings, errors, integers
//   - Doubles and booleans
//   - Bulk strings (with a null variant)
//   - Arrays and maps (with a null array variant), both of which may nest
package protocol
