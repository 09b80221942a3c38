package storage

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindText
	KindBytes
	KindList
	KindMap
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the tagged union stored against every key. Only the field
// matching Kind is meaningful; the rest are left at their zero value.
// It is gob-encoded directly (no interface fields), which lets the
// compression envelope and the snapshot format share one wire form.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Text  string
	Bytes []byte
	List  []Value
	Map   map[string]Value
}

func IntValue(v int64) Value     { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{Kind: KindBool, Bool: v} }
func TextValue(v string) Value   { return Value{Kind: KindText, Text: v} }
func BytesValue(v []byte) Value  { return Value{Kind: KindBytes, Bytes: v} }
func ListValue(v []Value) Value  { return Value{Kind: KindList, List: v} }
func MapValue(v map[string]Value) Value { return Value{Kind: KindMap, Map: v} }

// DetectValue coerces a raw wire argument (always a bulk string on the wire)
// into the narrowest Value kind it parses as: Int, then Float, then Bool,
// then Text. A bulk string that isn't valid UTF-8 is never coerced into
// Text — it becomes Bytes instead, preserving the opaque byte sequence the
// wire actually carried rather than corrupting it through a Go string.
func DetectValue(raw []byte) Value {
	if !utf8.Valid(raw) {
		return BytesValue(raw)
	}

	s := string(raw)

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}
	if b, ok := parseBool(s); ok {
		return BoolValue(b)
	}
	return TextValue(s)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// String renders a Value as human-readable text. The dispatcher does not
// use it: DUMP, CONFOPTIONS and GETSTATS replies are map frames built from
// per-field strings.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindText:
		return v.Text
	case KindBytes:
		return fmt.Sprintf("<%d bytes>", len(v.Bytes))
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, 0, len(v.Map))
		for k, item := range v.Map {
			parts = append(parts, k+": "+item.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}
