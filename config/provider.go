package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultEnvPrefix namespaces every setting read from the process environment.
	DefaultEnvPrefix = "APP_"

	// blankEnvKey is the one setting the blank provider still reads from the environment
	// so isolated test runs can point at a non-default redis.
	blankEnvKey = "redis_port"
)

// Provider answers setting lookups from exactly one origin.
// Lookup never fails: a key the source does not know resolves to def.
type Provider interface {
	Lookup(key string, def Value) Value
	Keys() []string
}

// NormalizeKey lowercases a setting name and maps separators to underscores.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(".", "_", "-", "_").Replace(key)
}

// FileProvider serves settings parsed from a flat settings file or a YAML document.
type FileProvider struct {
	path string
	data map[string]string
}

var _ Provider = (*FileProvider)(nil)

// LoadFileProvider parses the settings file at path. A missing file yields an error
// wrapping ErrSourceUnavailable so callers can fall through to the next source.
// Files ending in .yaml or .yml are read as YAML with nested keys joined by "_".
func LoadFileProvider(path string) (*FileProvider, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewUnavailableSourceError(path)
		}
		return nil, NewUnreadableSourceError(path, err)
	}

	var parser koanf.Parser = Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, NewUnreadableSourceError(path, err)
	}

	return &FileProvider{path: path, data: flattenSettings(k.All())}, nil
}

// NewFileProviderFromMap builds a FileProvider over an in-memory table of raw values.
func NewFileProviderFromMap(data map[string]string) *FileProvider {
	raw := make(map[string]any, len(data))
	for k, v := range data {
		raw[k] = v
	}
	return &FileProvider{path: "memory", data: flattenSettings(raw)}
}

func flattenSettings(all map[string]any) map[string]string {
	data := make(map[string]string, len(all))
	for k, v := range all {
		if v == nil {
			data[NormalizeKey(k)] = ""
			continue
		}
		data[NormalizeKey(k)] = stringify(v)
	}
	return data
}

// Path returns the file the provider was loaded from.
func (p *FileProvider) Path() string {
	return p.path
}

// Lookup returns the stored value for key, coerced. A stored empty string wins
// over def; def is used only when the file has no entry for key.
func (p *FileProvider) Lookup(key string, def Value) Value {
	raw, ok := p.data[key]
	if !ok {
		return def
	}
	return Coerce(raw)
}

// Keys lists every key present in the file, sorted.
func (p *FileProvider) Keys() []string {
	keys := make([]string, 0, len(p.data))
	for k := range p.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvProvider is a live view over prefixed process environment variables.
// The key db_host is read from <prefix>DB_HOST.
type EnvProvider struct {
	prefix    string
	lookupEnv func(string) (string, bool)
	environ   func() []string
}

var _ Provider = (*EnvProvider)(nil)

// NewEnvProvider creates an environment-backed provider. An empty prefix uses DefaultEnvPrefix.
func NewEnvProvider(prefix string) *EnvProvider {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvProvider{prefix: prefix, lookupEnv: os.LookupEnv, environ: os.Environ}
}

// Prefix returns the environment variable prefix.
func (p *EnvProvider) Prefix() string {
	return p.prefix
}

// VarName returns the environment variable consulted for key.
func (p *EnvProvider) VarName(key string) string {
	return p.prefix + strings.ToUpper(key)
}

// Lookup reads the prefixed variable for key at call time. A set-but-empty
// variable clears the setting: it resolves to Absent, not def.
func (p *EnvProvider) Lookup(key string, def Value) Value {
	raw, ok := p.lookupEnv(p.VarName(key))
	if !ok {
		return def
	}
	if raw == "" {
		return Absent
	}
	return Coerce(raw)
}

// Keys scans the environment for variables sharing the prefix.
func (p *EnvProvider) Keys() []string {
	prefix := p.prefix
	src := envprovider.Provider("", envprovider.Opt{
		Prefix: prefix,
		TransformFunc: func(k, v string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(k, prefix)), v
		},
		EnvironFunc: p.environ,
	})

	mp, err := src.Read()
	if err != nil {
		return nil
	}

	keys := make([]string, 0, len(mp))
	for k := range mp {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// BlankProvider answers every lookup with the supplied default. It is used for
// isolated test runs. The single exception is redis_port, which is still read
// from the prefixed environment so test suites can target a non-default server.
type BlankProvider struct {
	prefix    string
	lookupEnv func(string) (string, bool)
}

var _ Provider = (*BlankProvider)(nil)

// NewBlankProvider creates a provider that knows no keys.
func NewBlankProvider(prefix string) *BlankProvider {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &BlankProvider{prefix: prefix, lookupEnv: os.LookupEnv}
}

// Lookup returns def, except for redis_port when its environment variable is set.
func (p *BlankProvider) Lookup(key string, def Value) Value {
	if key == blankEnvKey {
		if raw, ok := p.lookupEnv(p.prefix + strings.ToUpper(blankEnvKey)); ok {
			return Coerce(raw)
		}
	}
	return def
}

// Keys returns no keys.
func (p *BlankProvider) Keys() []string {
	return nil
}

// String describes the provider for diagnostics.
func (p *FileProvider) String() string { return fmt.Sprintf("file(%s)", p.path) }

// String describes the provider for diagnostics.
func (p *EnvProvider) String() string { return fmt.Sprintf("env(%s*)", p.prefix) }

// String describes the provider for diagnostics.
func (p *BlankProvider) String() string { return "blank" }
