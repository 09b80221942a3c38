package server

import (
	"sort"

	"github.com/volatixdb/volatix/protocol"
	"github.com/volatixdb/volatix/storage"
)

// valueToFrame renders an engine Value as its native RESP3-subset frame,
// recursing into List/Map variants. This is the inverse of storage.DetectValue.
func valueToFrame(v storage.Value) protocol.Value {
	switch v.Kind {
	case storage.KindInt:
		return protocol.Value{Type: protocol.TypeInteger, Integer: v.Int}
	case storage.KindFloat:
		return protocol.Value{Type: protocol.TypeDouble, Double: v.Float}
	case storage.KindBool:
		return protocol.Value{Type: protocol.TypeBoolean, Bool: v.Bool}
	case storage.KindText:
		return protocol.Value{Type: protocol.TypeBulkString, Data: []byte(v.Text)}
	case storage.KindBytes:
		return protocol.Value{Type: protocol.TypeBulkString, Data: v.Bytes}
	case storage.KindList:
		elems := make([]protocol.Value, len(v.List))
		for i, item := range v.List {
			elems[i] = valueToFrame(item)
		}
		return protocol.Value{Type: protocol.TypeArray, Array: elems}
	case storage.KindMap:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]protocol.Value, 0, len(keys)*2)
		for _, k := range keys {
			pairs = append(pairs, protocol.Value{Type: protocol.TypeBulkString, Data: []byte(k)})
			pairs = append(pairs, valueToFrame(v.Map[k]))
		}
		return protocol.Value{Type: protocol.TypeMap, Map: pairs}
	default:
		return protocol.Value{Type: protocol.TypeBulkString, IsNull: true}
	}
}

// detectValues maps DetectValue over a slice of raw wire arguments, used to
// build the List value for SETLIST and the values half of SETMAP's pairs.
func detectValues(args [][]byte) []storage.Value {
	out := make([]storage.Value, len(args))
	for i, a := range args {
		out[i] = storage.DetectValue(a)
	}
	return out
}

// stringMapFrame renders a map[string]string (CONFOPTIONS, DUMP metadata)
// as a RESP3 map frame with keys in sorted order, for deterministic replies.
func stringMapFrame(m map[string]string) protocol.Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]protocol.Value, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, protocol.Value{Type: protocol.TypeBulkString, Data: []byte(k)})
		pairs = append(pairs, protocol.Value{Type: protocol.TypeBulkString, Data: []byte(m[k])})
	}
	return protocol.Value{Type: protocol.TypeMap, Map: pairs}
}
