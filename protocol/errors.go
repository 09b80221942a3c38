package protocol

import "fmt"

// ParseError signals a malformed frame — a bad length, a missing CRLF, an
// unrecognized type byte. It is always connection-fatal: the stream can no
// longer be trusted to be frame-aligned.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// ProtocolError signals a frame that parsed fine but was unexpected at this
// point in the session (a command before HELLO, a non-array request). It is
// request-fatal only: the connection stays open.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Message)
}

// FrameTooLargeError is returned when a frame exceeds the configured
// per-frame byte ceiling; the connection handler treats it the same as a
// ParseError (connection-fatal) per the spec's frame-size rule.
type FrameTooLargeError struct {
	Limit int
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("frame too large: exceeds %d byte limit", e.Limit)
}
