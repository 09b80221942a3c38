// Package server implements the TCP connection handler and command
// dispatcher for the Volatix cache: the mandatory HELLO handshake, the
// per-connection read-dispatch-write loop, and the mapping from parsed
// RESP3-subset frames to storage engine calls.
package server
