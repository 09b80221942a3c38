package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the one-byte RESP3-subset frame prefix.
type ValueType byte

const (
	TypeSimpleString ValueType = '+'
	TypeError        ValueType = '-'
	TypeInteger      ValueType = ':'
	TypeBulkString   ValueType = '$'
	TypeArray        ValueType = '*'
	TypeDouble       ValueType = ','
	TypeBoolean      ValueType = '#'
	TypeMap          ValueType = '%'
)

// Value represents one parsed RESP3-subset frame. Only the field
// corresponding to Type is meaningful, except IsNull which qualifies
// TypeBulkString/TypeArray.
type Value struct {
	Type    ValueType
	Data    []byte  // Simple string / Error / Bulk string payload
	Integer int64   // Integer
	Double  float64 // Double
	Bool    bool    // Boolean
	Array   []Value // Array
	Map     []Value // Map, flattened key/value pairs (2n elements)
	IsNull  bool    // Bulk string / Array null marker
}

// String returns a human-readable rendering, used for error messages and
// debugging — never for wire output.
func (v Value) String() string {
	switch v.Type {
	case TypeSimpleString, TypeError:
		return string(v.Data)
	case TypeInteger:
		return strconv.FormatInt(v.Integer, 10)
	case TypeDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeBulkString:
		if v.IsNull {
			return "(nil)"
		}
		return string(v.Data)
	case TypeArray:
		if v.IsNull {
			return "(nil)"
		}
		parts := make([]string, len(v.Array))
		for i, item := range v.Array {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeMap:
		parts := make([]string, 0, len(v.Map)/2)
		for i := 0; i+1 < len(v.Map); i += 2 {
			parts = append(parts, v.Map[i].String()+": "+v.Map[i+1].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("unknown type %c", v.Type)
	}
}

// Bytes returns the raw byte payload (valid for bulk strings only).
func (v Value) Bytes() []byte { return v.Data }

// Int returns the integer value, or 0 if not an integer.
func (v Value) Int() int64 { return v.Integer }

// IsError returns true if this is an error frame.
func (v Value) IsError() bool { return v.Type == TypeError }

// Error returns the error message if this is an error frame.
func (v Value) Error() string {
	if v.Type == TypeError {
		return string(v.Data)
	}
	return ""
}

// Command is a parsed request: a command name plus positional arguments,
// the shape every dispatcher entry point consumes.
type Command struct {
	Name string
	Args [][]byte
}

// ParseCommand parses a RESP array frame into a Command. The dispatcher
// compares Name case-insensitively; ParseCommand upper-cases it once here.
func ParseCommand(v Value) (*Command, error) {
	if v.Type != TypeArray || v.IsNull || len(v.Array) == 0 {
		return nil, &ProtocolError{Message: "command must be a non-empty array"}
	}

	cmd := &Command{Args: make([][]byte, len(v.Array)-1)}

	if v.Array[0].Type != TypeBulkString || v.Array[0].IsNull {
		return nil, &ProtocolError{Message: "command name must be a bulk string"}
	}
	cmd.Name = strings.ToUpper(string(v.Array[0].Data))

	for i := 1; i < len(v.Array); i++ {
		if v.Array[i].Type != TypeBulkString || v.Array[i].IsNull {
			return nil, &ProtocolError{Message: "command arguments must be bulk strings"}
		}
		cmd.Args[i-1] = v.Array[i].Data
	}

	return cmd, nil
}

// String returns a human-readable rendering of the command, for logging.
func (c *Command) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = string(arg)
	}
	return c.Name + " " + strings.Join(args, " ")
}
