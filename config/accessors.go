package config

// GetString resolves key as a string. Absent values return the optional default
// or "". Integers and booleans are rendered.
func (s *Settings) GetString(key string, defaultVal ...string) string {
	v := s.Get(key)
	if v.IsAbsent() {
		return optionalDefault("", defaultVal...)
	}
	return v.String()
}

// GetInt resolves key as an int. Absent or non-numeric values return the optional default or 0.
func (s *Settings) GetInt(key string, defaultVal ...int) int {
	n, ok := s.Get(key).Int()
	if !ok {
		return optionalDefault(0, defaultVal...)
	}
	i, err := toInt(n)
	if err != nil {
		return optionalDefault(0, defaultVal...)
	}
	return i
}

// GetBool resolves key as a bool. Absent or unparsable values return the optional default or false.
func (s *Settings) GetBool(key string, defaultVal ...bool) bool {
	b, ok := s.Get(key).Bool()
	if !ok {
		return optionalDefault(false, defaultVal...)
	}
	return b
}

// Present reports whether key resolved to a non-blank value.
func (s *Settings) Present(key string) bool {
	return s.Get(key).Present()
}

// Truthy reports whether key resolved to a value that enables a flag.
func (s *Settings) Truthy(key string) bool {
	return s.Get(key).Truthy()
}

// FirstPresent returns the first key in keys that resolves to a present value.
func (s *Settings) FirstPresent(keys ...string) (Value, bool) {
	for _, k := range keys {
		if v := s.Get(k); v.Present() {
			return v, true
		}
	}
	return Absent, false
}

func optionalDefault[T any](zero T, overrides ...T) T {
	if len(overrides) > 0 {
		return overrides[0]
	}
	return zero
}
