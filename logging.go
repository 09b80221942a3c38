package volatix

import (
	"fmt"
	"log"
)

// Field is a structured log field attached to a single log call.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the structured logging seam the server, engine, and
// snapshotter all write through. A Volatix built without WithLogger uses
// defaultLogger, a thin wrapper over the standard log package.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type defaultLogger struct{}

func (defaultLogger) Debug(msg string, fields ...Field) { logWithFields("DEBUG", msg, fields...) }
func (defaultLogger) Info(msg string, fields ...Field)  { logWithFields("INFO", msg, fields...) }
func (defaultLogger) Error(msg string, fields ...Field) { logWithFields("ERROR", msg, fields...) }

func logWithFields(level, msg string, fields ...Field) {
	line := level + ": " + msg
	for _, f := range fields {
		line += " " + f.Key + "=" + formatValue(f.Value)
	}
	log.Println(line)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// storageLoggerAdapter adapts a Field-based Logger to the variadic
// key/value Logger interface the storage, server, and persistence
// packages expect, the same adapter-over-independent-interfaces shape the
// teacher uses between its root Logger and its sync manager's logger seam.
type storageLoggerAdapter struct {
	logger Logger
}

func (a storageLoggerAdapter) Debug(msg string, kv ...any) { a.logger.Debug(msg, kvToFields(kv)...) }
func (a storageLoggerAdapter) Info(msg string, kv ...any)  { a.logger.Info(msg, kvToFields(kv)...) }
func (a storageLoggerAdapter) Error(msg string, kv ...any) { a.logger.Error(msg, kvToFields(kv)...) }

func kvToFields(kv []any) []Field {
	fields := make([]Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		fields = append(fields, Field{Key: key, Value: kv[i+1]})
	}
	return fields
}
