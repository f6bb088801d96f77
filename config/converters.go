package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errEmptyString = errors.New("empty string")

// toInt narrows n to the platform int.
func toInt(n int64) (int, error) {
	if n > math.MaxInt || n < math.MinInt {
		return 0, fmt.Errorf("value %d overflows int", n)
	}
	return int(n), nil
}

// toInt64 converts the scalar types YAML and flat-file sources produce.
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil //#nosec G115 -- checked above
	case float32:
		return wholeFloat(float64(v))
	case float64:
		return wholeFloat(v)
	case string:
		str := strings.TrimSpace(v)
		if str == "" {
			return 0, errEmptyString
		}
		return strconv.ParseInt(str, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

// toBool accepts "true" or "false" in any case. "1" and "yes" are rejected.
func toBool(value string) (bool, error) {
	str := strings.TrimSpace(value)
	switch {
	case str == "":
		return false, errEmptyString
	case strings.EqualFold(str, "true"):
		return true, nil
	case strings.EqualFold(str, "false"):
		return false, nil
	default:
		return false, fmt.Errorf("%q is not true or false", value)
	}
}

// wholeFloat accepts floats that hold an exact int64.
func wholeFloat(value float64) (int64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || math.Trunc(value) != value {
		return 0, fmt.Errorf("value %v is not an integer", value)
	}
	if value >= math.MaxInt64 || value < math.MinInt64 {
		return 0, fmt.Errorf("value %v overflows int64", value)
	}
	return int64(value), nil
}

// stringify renders a structured-source value as a raw setting string. Lists
// join with commas.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", value)
	}
}
