package storage

import "fmt"

// ErrKind enumerates the engine-level error taxonomy. Protocol-layer errors
// (ParseError, ProtocolError) live in the protocol package instead, since
// they never originate inside the engine.
type ErrKind int

const (
	NotFound ErrKind = iota
	Conflict
	TypeMismatch
	CapacityError
	ConfigError
	ArgumentError
	IoError
	Internal
)

// String returns the wire-visible kind name used in "-ERR <kind>: <message>".
func (k ErrKind) String() string {
	switch k {
	case NotFound:
		return "NOTFOUND"
	case Conflict:
		return "CONFLICT"
	case TypeMismatch:
		return "TYPEMISMATCH"
	case CapacityError:
		return "CAPACITY"
	case ConfigError:
		return "CONFIG"
	case ArgumentError:
		return "ARGUMENT"
	case IoError:
		return "IO"
	default:
		return "INTERNAL"
	}
}

// Error is the engine's error type: a Kind plus a human-readable message.
type Error struct {
	Kind    ErrKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsNotFound reports whether err is a storage.Error of kind NotFound.
func IsNotFound(err error) bool {
	se, ok := err.(*Error)
	return ok && se.Kind == NotFound
}
