package config

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed defaults.conf
var bundledDefaults []byte

// Defaults is the baseline key to default-value table. An empty entry in the
// table means "no default" and resolves to Absent.
type Defaults struct {
	mu     sync.RWMutex
	values map[string]Value
}

// LoadDefaults parses the bundled defaults table.
func LoadDefaults() (*Defaults, error) {
	return ParseDefaults(bundledDefaults)
}

// ParseDefaults parses a defaults table in settings-file format.
func ParseDefaults(b []byte) (*Defaults, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(b), Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	values := make(map[string]Value)
	for key, raw := range k.All() {
		s := stringify(raw)
		if s == "" {
			values[NormalizeKey(key)] = Absent
			continue
		}
		values[NormalizeKey(key)] = Coerce(s)
	}
	return &Defaults{values: values}, nil
}

// NewDefaults builds a defaults table from already-typed values.
func NewDefaults(values map[string]Value) *Defaults {
	d := &Defaults{values: make(map[string]Value, len(values))}
	for k, v := range values {
		d.values[NormalizeKey(k)] = v
	}
	return d
}

// Lookup returns the default for key, or Absent.
func (d *Defaults) Lookup(key string) Value {
	if d == nil {
		return Absent
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.values[key]
}

// Has reports whether key is part of the defaults table.
func (d *Defaults) Has(key string) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.values[key]
	return ok
}

// Add registers def for key unless the key is already known. It reports whether
// the default was added.
func (d *Defaults) Add(key string, def Value) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.values[key]; ok {
		return false
	}
	d.values[key] = def
	return true
}

// Keys lists every key in the table, sorted.
func (d *Defaults) Keys() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
