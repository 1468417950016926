package logger

import (
	"github.com/dangen-master/pdf2html/tracer"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

// Log binds a LogFunc so that callers can carry their own logger
// instead of sharing package-level state. A nil Log discards
// everything.
type Log struct {
	fn LogFunc
}

// New returns a Log bound to f. A nil f yields a Log that discards
// messages but still feeds the tracer.
func New(f LogFunc) *Log {
	return &Log{fn: f}
}

// Debug logs a message at debug level.
// If the last keyvals element is a bool and true, it is treated as a
// trace flag and the message is also recorded by the tracer.
func (l *Log) Debug(msg string, keyvals ...interface{}) {
	trace := false
	if len(keyvals) > 0 {
		if b, ok := keyvals[len(keyvals)-1].(bool); ok {
			trace = b
			keyvals = keyvals[:len(keyvals)-1]
		}
	}
	if l != nil && l.fn != nil {
		l.fn(DebugLevel, msg, keyvals...)
	}
	if trace {
		tracer.Log(msg)
	}
}

// Error logs a message at error level
func (l *Log) Error(msg string, keyvals ...interface{}) {
	if l != nil && l.fn != nil {
		l.fn(ErrorLevel, msg, keyvals...)
	}
	tracer.Log(msg)
}
