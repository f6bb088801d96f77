package config

import (
	"strconv"
	"strings"
)

// Kind identifies the type carried by a Value.
type Kind int

const (
	// KindAbsent marks a value that was never set. It is distinct from an empty string.
	KindAbsent Kind = iota
	KindString
	KindInt
	KindBool
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// Value is a coerced configuration value: a string, an integer, a boolean or absent.
// The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  int64
	flag bool
}

// Absent is the value of a setting that no source answered for.
var Absent = Value{}

// StringValue wraps s without coercion.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue wraps n.
func IntValue(n int64) Value { return Value{kind: KindInt, num: n} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: KindBool, flag: b} }

// Coerce converts a raw source string into a typed Value.
// The literals "true" and "false" become booleans, a string made only of digits
// (surrounding whitespace ignored) becomes an integer, anything else stays a string.
func Coerce(raw string) Value {
	if raw == "true" || raw == "false" {
		return BoolValue(raw == "true")
	}
	if trimmed := strings.TrimSpace(raw); isDigits(trimmed) {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return IntValue(n)
		}
	}
	return StringValue(raw)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValueOf converts a Go value from a structured source (YAML, confmap) into a Value.
// Strings are coerced, integers and booleans are kept, nil is absent and anything
// else is rendered with its default formatting.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Absent
	case Value:
		return t
	case string:
		return Coerce(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float64:
		if t == float64(int64(t)) && t >= 0 {
			return IntValue(int64(t))
		}
		return StringValue(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		n, err := toInt64(t)
		if err == nil {
			return IntValue(n)
		}
		return StringValue(stringify(t))
	}
}

// Kind reports the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether no source provided v.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Present reports whether v is set and, for strings, not blank.
func (v Value) Present() bool {
	switch v.kind {
	case KindAbsent:
		return false
	case KindString:
		return strings.TrimSpace(v.str) != ""
	default:
		return true
	}
}

// Truthy reports whether v should enable a feature flag: anything present except
// the boolean false.
func (v Value) Truthy() bool {
	if v.kind == KindBool {
		return v.flag
	}
	return v.Present()
}

// String renders v. Absent values render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Int returns the integer carried by v. Strings holding a signed integer are
// parsed as well; ok is false otherwise.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.num, true
	case KindString:
		n, err := toInt64(v.str)
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns the boolean carried by v. Strings are parsed case-insensitively.
func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.flag, true
	case KindString:
		b, err := toBool(v.str)
		return b, err == nil
	default:
		return false, false
	}
}

// Interface returns v as a plain Go value (string, int64, bool or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindBool:
		return v.flag
	default:
		return nil
	}
}
