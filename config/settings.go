package config

import (
	"sort"
	"sync"
)

// entry is a memoized resolution. missing distinguishes "resolved to nothing"
// from "not computed yet", so absent keys do not re-query the provider.
type entry struct {
	value   Value
	missing bool
}

// Settings resolves keys against the active provider with the defaults table as
// fallback and memoizes every result for the lifetime of the process.
// Each key consults the provider once; Reset clears the memo (test isolation).
type Settings struct {
	mu       sync.RWMutex
	provider Provider
	defaults *Defaults
	resolved map[string]entry
}

// NewSettings builds a Settings over provider and defaults.
// A nil provider behaves like a BlankProvider, nil defaults like an empty table.
func NewSettings(provider Provider, defaults *Defaults) *Settings {
	if provider == nil {
		provider = NewBlankProvider("")
	}
	if defaults == nil {
		defaults = NewDefaults(nil)
	}
	return &Settings{
		provider: provider,
		defaults: defaults,
		resolved: make(map[string]entry),
	}
}

// Get resolves key. The first call consults the provider with the registered
// default; later calls return the memoized value, including Absent.
func (s *Settings) Get(key string) Value {
	key = NormalizeKey(key)

	s.mu.RLock()
	e, ok := s.resolved[key]
	provider := s.provider
	s.mu.RUnlock()
	if ok {
		return e.unwrap()
	}

	// Two goroutines may both reach the provider for the same key; the lookup is
	// a pure function of stable inputs, so the first stored result wins.
	v := provider.Lookup(key, s.defaults.Lookup(key))
	e = entry{value: v, missing: v.IsAbsent()}

	s.mu.Lock()
	if existing, ok := s.resolved[key]; ok {
		e = existing
	} else {
		s.resolved[key] = e
	}
	s.mu.Unlock()

	return e.unwrap()
}

func (e entry) unwrap() Value {
	if e.missing {
		return Absent
	}
	return e.value
}

// Keys returns the settings surface: the union of default keys and provider keys, sorted.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, k := range s.defaults.Keys() {
		seen[k] = struct{}{}
	}
	for _, k := range provider.Keys() {
		seen[NormalizeKey(k)] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ProviderKeys returns only the keys the active provider can answer for.
func (s *Settings) ProviderKeys() []string {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()

	keys := provider.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, NormalizeKey(k))
	}
	sort.Strings(out)
	return out
}

// Known reports whether key belongs to the settings surface.
func (s *Settings) Known(key string) bool {
	key = NormalizeKey(key)
	if s.defaults.Has(key) {
		return true
	}
	for _, k := range s.ProviderKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// AddDefault registers a default for a key outside the current surface, typically
// a plugin setting. Known keys are left untouched. It reports whether the default was added.
func (s *Settings) AddDefault(key string, def Value) bool {
	key = NormalizeKey(key)
	if s.Known(key) {
		return false
	}
	if !s.defaults.Add(key, def) {
		return false
	}

	s.mu.Lock()
	delete(s.resolved, key)
	s.mu.Unlock()
	return true
}

// Provider returns the active provider.
func (s *Settings) Provider() Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// SetProvider swaps the active provider and clears every memoized value.
// Production code chooses the provider once at startup; this exists for tests.
func (s *Settings) SetProvider(p Provider) {
	if p == nil {
		p = NewBlankProvider("")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
	s.resolved = make(map[string]entry)
}

// Reset clears every memoized value.
func (s *Settings) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = make(map[string]entry)
}

// All resolves every key of the surface.
func (s *Settings) All() map[string]Value {
	keys := s.Keys()
	out := make(map[string]Value, len(keys))
	for _, k := range keys {
		out[k] = s.Get(k)
	}
	return out
}
