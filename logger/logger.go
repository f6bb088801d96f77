package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ComponentField names the field set by Named.
const ComponentField = "component"

// ZeroLogger implements Logger on zerolog.
type ZeroLogger struct {
	zlog   zerolog.Logger
	filter *SensitiveDataFilter
}

var _ Logger = (*ZeroLogger)(nil)

var callerMarshalOnce sync.Once

// New creates a ZeroLogger writing to stderr at the given level. pretty selects
// the human-readable console format instead of JSON lines.
func New(level string, pretty bool) *ZeroLogger {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(level, w)
}

// NewWithWriter creates a ZeroLogger emitting JSON lines to w.
// Unknown levels fall back to info; "disabled" silences the logger.
func NewWithWriter(level string, w io.Writer) *ZeroLogger {
	return NewWithFilter(level, w, DefaultFilterConfig())
}

// NewWithFilter creates a ZeroLogger with a custom sensitive-field configuration.
func NewWithFilter(level string, w io.Writer, filterConfig *FilterConfig) *ZeroLogger {
	callerMarshalOnce.Do(func() {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			return filepath.Base(filepath.Dir(file)) + "/" + filepath.Base(file) + ":" + strconv.Itoa(line)
		}
	})

	l := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
	return &ZeroLogger{zlog: l, filter: NewSensitiveDataFilter(filterConfig)}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop returns a logger that discards everything.
func Nop() *ZeroLogger {
	return &ZeroLogger{zlog: zerolog.Nop(), filter: NewSensitiveDataFilter(nil)}
}

func (l *ZeroLogger) newEvent(e *zerolog.Event) LogEvent {
	return &event{e: e, filter: l.filter}
}

// Info creates an info-level event.
func (l *ZeroLogger) Info() LogEvent { return l.newEvent(l.zlog.Info()) }

// Error creates an error-level event.
func (l *ZeroLogger) Error() LogEvent { return l.newEvent(l.zlog.Error()) }

// Debug creates a debug-level event.
func (l *ZeroLogger) Debug() LogEvent { return l.newEvent(l.zlog.Debug()) }

// Warn creates a warning-level event.
func (l *ZeroLogger) Warn() LogEvent { return l.newEvent(l.zlog.Warn()) }

// Named returns a child logger tagged with component.
func (l *ZeroLogger) Named(component string) Logger {
	return &ZeroLogger{
		zlog:   l.zlog.With().Str(ComponentField, component).Logger(),
		filter: l.filter,
	}
}

// WithFields returns a child logger with fields attached to every entry.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	return &ZeroLogger{
		zlog:   l.zlog.With().Fields(l.filter.FilterFields(fields)).Logger(),
		filter: l.filter,
	}
}
