package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// event filters string-like fields before handing them to zerolog.
type event struct {
	e      *zerolog.Event
	filter *SensitiveDataFilter
}

func (ev *event) with(e *zerolog.Event) LogEvent {
	return &event{e: e, filter: ev.filter}
}

func (ev *event) Msg(msg string) { ev.e.Msg(msg) }

// Err logs the error text with any URL credentials masked.
func (ev *event) Err(err error) LogEvent {
	if err == nil {
		return ev
	}
	return ev.with(ev.e.Str(zerolog.ErrorFieldName, ev.filter.FilterText(err.Error())))
}

func (ev *event) Str(key, value string) LogEvent {
	return ev.with(ev.e.Str(key, ev.filter.FilterString(key, value)))
}

func (ev *event) Int(key string, value int) LogEvent {
	return ev.with(ev.e.Int(key, value))
}

func (ev *event) Int64(key string, value int64) LogEvent {
	return ev.with(ev.e.Int64(key, value))
}

func (ev *event) Bool(key string, value bool) LogEvent {
	return ev.with(ev.e.Bool(key, value))
}

func (ev *event) Dur(key string, d time.Duration) LogEvent {
	return ev.with(ev.e.Dur(key, d))
}

func (ev *event) Interface(key string, i any) LogEvent {
	return ev.with(ev.e.Interface(key, ev.filter.FilterValue(key, i)))
}
