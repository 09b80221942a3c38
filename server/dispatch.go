package server

import (
	"time"

	"github.com/volatixdb/volatix/protocol"
	"github.com/volatixdb/volatix/storage"
)

// helpText documents the command set and the one behavior the spec
// deliberately redefines from usual Redis semantics: EXPIRE's delta
// interpretation.
const helpText = `Volatix command reference:
  HELLO                        handshake, must be sent first
  SET key value                store value, auto-detected as Int/Float/Bool/Text
  GET key
  DELETE key
  EXISTS key
  INCR key / DECR key          creates key as Int(0) first if absent
  RENAME old new
  KEYS
  FLUSH
  SETLIST key v1 [v2 ...]      stores a List value at key
  GETLIST key [key2 ...]
  DELETELIST key [key2 ...]
  SETMAP k1 v1 [k2 v2 ...]     bulk key/value insert
  SETWTTL key value seconds
  EXPIRE key delta_seconds     ADJUSTS the current expiry by a signed delta;
                                this is not an absolute TTL. A result in the
                                past expires the key immediately.
  GETTTL key
  EVICTNOW
  GETSTATS / RESETSTATS
  DUMP key
  CONFGET name / CONFSET name value / CONFOPTIONS / CONFRESET
  HELP
  QUIT
`

// dispatch looks up cmd.Name in the command table and runs it, returning
// true if the connection should close afterward (QUIT, or a handler that
// chose to end the session).
func (c *Client) dispatch(cmd *protocol.Command) bool {
	switch cmd.Name {
	case "HELLO":
		c.cmdHello(cmd.Args)
	case "SET":
		c.cmdSet(cmd.Args)
	case "GET":
		c.cmdGet(cmd.Args)
	case "DELETE":
		c.cmdDelete(cmd.Args)
	case "EXISTS":
		c.cmdExists(cmd.Args)
	case "INCR":
		c.cmdIncr(cmd.Args)
	case "DECR":
		c.cmdDecr(cmd.Args)
	case "RENAME":
		c.cmdRename(cmd.Args)
	case "KEYS":
		c.cmdKeys(cmd.Args)
	case "FLUSH":
		c.cmdFlush(cmd.Args)
	case "SETLIST":
		c.cmdSetList(cmd.Args)
	case "GETLIST":
		c.cmdGetList(cmd.Args)
	case "DELETELIST":
		c.cmdDeleteList(cmd.Args)
	case "SETMAP":
		c.cmdSetMap(cmd.Args)
	case "SETWTTL":
		c.cmdSetWTTL(cmd.Args)
	case "EXPIRE":
		c.cmdExpire(cmd.Args)
	case "GETTTL":
		c.cmdGetTTL(cmd.Args)
	case "EVICTNOW":
		c.cmdEvictNow(cmd.Args)
	case "GETSTATS":
		c.cmdGetStats(cmd.Args)
	case "RESETSTATS":
		c.cmdResetStats(cmd.Args)
	case "DUMP":
		c.cmdDump(cmd.Args)
	case "CONFSET":
		c.cmdConfSet(cmd.Args)
	case "CONFGET":
		c.cmdConfGet(cmd.Args)
	case "CONFOPTIONS":
		c.cmdConfOptions(cmd.Args)
	case "CONFRESET":
		c.cmdConfReset(cmd.Args)
	case "HELP":
		c.writeBulkString(helpText)
	case "QUIT":
		c.writeOK()
		return true
	default:
		c.writeRawError("ERR unknown command '" + cmd.Name + "'")
	}
	return false
}

func (c *Client) cmdHello(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("HELLO")
		return
	}
	c.handshakeDone = true
	c.writeBulkString("HELLO")
}

func (c *Client) cmdSet(args [][]byte) {
	if len(args) != 2 {
		c.writeArityError("SET")
		return
	}
	key := string(args[0])
	if err := c.server.engine.Set(key, storage.DetectValue(args[1])); err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeOK()
}

func (c *Client) cmdGet(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("GET")
		return
	}
	v, err := c.server.engine.Get(string(args[0]))
	if err != nil {
		if storage.IsNotFound(err) {
			c.writeNullBulk()
			return
		}
		c.writeEngineError(err)
		return
	}
	c.writeValue(v)
}

func (c *Client) cmdDelete(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("DELETE")
		return
	}
	c.writeBool(c.server.engine.Delete(string(args[0])))
}

func (c *Client) cmdExists(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("EXISTS")
		return
	}
	c.writeBool(c.server.engine.Exists(string(args[0])))
}

func (c *Client) cmdIncr(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("INCR")
		return
	}
	n, err := c.server.engine.Incr(string(args[0]))
	if err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeInt(n)
}

func (c *Client) cmdDecr(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("DECR")
		return
	}
	n, err := c.server.engine.Decr(string(args[0]))
	if err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeInt(n)
}

func (c *Client) cmdRename(args [][]byte) {
	if len(args) != 2 {
		c.writeArityError("RENAME")
		return
	}
	if err := c.server.engine.Rename(string(args[0]), string(args[1])); err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeOK()
}

func (c *Client) cmdKeys(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("KEYS")
		return
	}
	c.writeStringArray(c.server.engine.Keys())
}

func (c *Client) cmdFlush(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("FLUSH")
		return
	}
	c.server.engine.Flush()
	c.writeSuccess()
}

func (c *Client) cmdSetList(args [][]byte) {
	if len(args) < 1 {
		c.writeArityError("SETLIST")
		return
	}
	key := string(args[0])
	list := storage.ListValue(detectValues(args[1:]))
	if err := c.server.engine.Set(key, list); err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeOK()
}

func (c *Client) cmdGetList(args [][]byte) {
	if len(args) < 1 {
		c.writeArityError("GETLIST")
		return
	}
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = string(a)
	}
	values, ok := c.server.engine.GetList(keys)

	frames := make([]protocol.Value, len(values))
	for i := range values {
		if ok[i] {
			frames[i] = valueToFrame(values[i])
		} else {
			frames[i] = protocol.Value{Type: protocol.TypeBulkString, IsNull: true}
		}
	}
	c.writeValueArray(frames)
}

func (c *Client) cmdDeleteList(args [][]byte) {
	if len(args) < 1 {
		c.writeArityError("DELETELIST")
		return
	}
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = string(a)
	}
	c.writeInt(c.server.engine.DeleteList(keys))
}

func (c *Client) cmdSetMap(args [][]byte) {
	if len(args) < 2 || len(args)%2 != 0 {
		c.writeArityError("SETMAP")
		return
	}
	pairs := make(map[string]storage.Value, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs[string(args[i])] = storage.DetectValue(args[i+1])
	}
	if err := c.server.engine.SetMap(pairs); err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeOK()
}

func (c *Client) cmdSetWTTL(args [][]byte) {
	if len(args) != 3 {
		c.writeArityError("SETWTTL")
		return
	}
	seconds, err := parseInt64Arg("SETWTTL", args[2])
	if err != nil {
		c.writeEngineError(err)
		return
	}
	key := string(args[0])
	value := storage.DetectValue(args[1])
	if err := c.server.engine.SetWithTTL(key, value, time.Duration(seconds)*time.Second); err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeOK()
}

func (c *Client) cmdExpire(args [][]byte) {
	if len(args) != 2 {
		c.writeArityError("EXPIRE")
		return
	}
	delta, err := parseInt64Arg("EXPIRE", args[1])
	if err != nil {
		c.writeEngineError(err)
		return
	}
	if err := c.server.engine.Expire(string(args[0]), delta); err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeOK()
}

func (c *Client) cmdGetTTL(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("GETTTL")
		return
	}
	seconds, err := c.server.engine.GetTTL(string(args[0]))
	if err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeInt(seconds)
}

func (c *Client) cmdEvictNow(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("EVICTNOW")
		return
	}
	c.writeInt(c.server.engine.EvictNow())
}

func (c *Client) cmdGetStats(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("GETSTATS")
		return
	}
	stats := c.server.engine.GetStats()
	c.writeMap(map[string]string{
		"hits":             itoa(stats.Hits),
		"misses":           itoa(stats.Misses),
		"evictions":        itoa(stats.Evictions),
		"expired_removals": itoa(stats.ExpiredRemovals),
		"total_entries":    itoa(stats.TotalEntries),
	})
}

func (c *Client) cmdResetStats(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("RESETSTATS")
		return
	}
	c.server.engine.ResetStats()
	c.writeSuccess()
}

func (c *Client) cmdDump(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("DUMP")
		return
	}
	info, err := c.server.engine.Dump(string(args[0]))
	if err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeMap(map[string]string{
		"created_at":    info.CreatedAt.UTC().Format(time.RFC3339Nano),
		"last_accessed": info.LastAccessed.UTC().Format(time.RFC3339Nano),
		"access_count":  itoa(int64(info.AccessCount)),
		"size":          itoa(int64(info.Size)),
		"compressed":    boolStr(info.Compressed),
		"ttl_remaining": itoa(int64(info.TTLRemaining / time.Second)),
	})
}

func (c *Client) cmdConfSet(args [][]byte) {
	if len(args) != 2 {
		c.writeArityError("CONFSET")
		return
	}
	if err := c.server.engine.ConfSet(string(args[0]), string(args[1])); err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeOK()
}

func (c *Client) cmdConfGet(args [][]byte) {
	if len(args) != 1 {
		c.writeArityError("CONFGET")
		return
	}
	v, err := c.server.engine.ConfGet(string(args[0]))
	if err != nil {
		c.writeEngineError(err)
		return
	}
	c.writeBulkString(v)
}

func (c *Client) cmdConfOptions(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("CONFOPTIONS")
		return
	}
	c.writeMap(c.server.engine.ConfOptions())
}

func (c *Client) cmdConfReset(args [][]byte) {
	if len(args) != 0 {
		c.writeArityError("CONFRESET")
		return
	}
	c.server.engine.ConfReset()
	c.writeOK()
}
