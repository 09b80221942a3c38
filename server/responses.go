package server

import (
	"strconv"

	"github.com/volatixdb/volatix/protocol"
	"github.com/volatixdb/volatix/storage"
)

func (c *Client) writeOK() {
	c.writer.WriteSimpleString("OK")
	c.writer.Flush()
}

func (c *Client) writeSuccess() {
	c.writer.WriteSimpleString("SUCCESS")
	c.writer.Flush()
}

func (c *Client) writeBool(b bool) {
	c.writer.WriteBoolean(b)
	c.writer.Flush()
}

func (c *Client) writeInt(n int64) {
	c.writer.WriteInteger(n)
	c.writer.Flush()
}

func (c *Client) writeBulkString(s string) {
	c.writer.WriteBulkString([]byte(s))
	c.writer.Flush()
}

func (c *Client) writeNullBulk() {
	c.writer.WriteNullBulkString()
	c.writer.Flush()
}

func (c *Client) writeValue(v storage.Value) {
	c.writer.WriteValue(valueToFrame(v))
	c.writer.Flush()
}

func (c *Client) writeValueArray(values []protocol.Value) {
	c.writer.WriteArray(values)
	c.writer.Flush()
}

func (c *Client) writeStringArray(items []string) {
	values := make([]protocol.Value, len(items))
	for i, s := range items {
		values[i] = protocol.Value{Type: protocol.TypeBulkString, Data: []byte(s)}
	}
	c.writer.WriteArray(values)
	c.writer.Flush()
}

func (c *Client) writeMap(m map[string]string) {
	frame := stringMapFrame(m)
	c.writer.WriteMap(frame.Map)
	c.writer.Flush()
}

// writeRawError writes msg verbatim as an error frame. Used for
// handshake/protocol-level rejections that aren't storage.Error values.
func (c *Client) writeRawError(msg string) {
	c.server.errorCount.Add(1)
	c.writer.WriteError(msg)
	c.writer.Flush()
}

// writeArityError writes the wire form the spec reserves for arity
// mismatches: "-ERR <name>: <reason>", keyed by command name rather than
// error kind.
func (c *Client) writeArityError(name string) {
	c.writeRawError("ERR " + name + ": wrong number of arguments")
}

// writeEngineError renders any error returned by the storage engine as
// "-ERR <kind>: <message>", falling back to a generic Internal-kind
// rendering for errors the engine didn't tag itself.
func (c *Client) writeEngineError(err error) {
	if se, ok := err.(*storage.Error); ok {
		c.writeRawError("ERR " + se.Kind.String() + ": " + se.Message)
		return
	}
	c.writeRawError("ERR " + storage.Internal.String() + ": " + err.Error())
}

// parseInt64Arg parses a command argument as a base-10 signed integer,
// returning an ArgumentError-kind storage.Error on failure so it renders
// through the same "-ERR <kind>: <message>" path as engine errors.
func parseInt64Arg(name string, raw []byte) (int64, error) {
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, &storage.Error{Kind: storage.ArgumentError, Message: name + ": not an integer"}
	}
	return n, nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
