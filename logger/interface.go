// Package logger is the structured logging boundary shared by the settings
// loader, the secret coordinator and the descriptor synthesizer. Values under
// sensitive field names, and credentials embedded in URLs, never reach the
// writer unmasked.
package logger

import "time"

// Logger creates leveled events. There is no fatal level: nothing in this
// module may terminate the process.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent

	// Named returns a child logger whose entries carry component=name.
	Named(component string) Logger
	WithFields(fields map[string]any) Logger
}

// LogEvent is a structured entry under construction. Msg sends it.
type LogEvent interface {
	Msg(msg string)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Bool(key string, value bool) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
}
