package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gaborage/go-settings/cache"
	redisstore "github.com/gaborage/go-settings/cache/redis"
	vaultstore "github.com/gaborage/go-settings/cache/vault"
	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/descriptor"
	"github.com/gaborage/go-settings/logger"
)

// Coordination store backends selectable through secret_store.
const (
	StoreRedis = "redis"
	StoreVault = "vault"
)

// StoreBackend describes the coordination store to open.
type StoreBackend struct {
	Kind string
	// Cache is set for the redis backend.
	Cache      *descriptor.Cache
	VaultMount string
	VaultPath  string
}

// StoreConnector opens the coordination store described by backend.
type StoreConnector func(ctx context.Context, backend StoreBackend) (cache.Store, error)

// ConnectStore is the default StoreConnector. Vault reads its address and token
// from the standard VAULT_* environment variables.
func ConnectStore(_ context.Context, backend StoreBackend) (cache.Store, error) {
	switch backend.Kind {
	case StoreRedis, "":
		store, err := redisstore.NewStore(backend.Cache)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoreVault:
		store, err := vaultstore.NewStoreFromEnv(backend.VaultMount, backend.VaultPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, cache.NewConfigError(config.KeySecretStore, fmt.Sprintf("unknown store %q", backend.Kind), nil)
	}
}

// storeBackend reads the backend selection from settings. The cache descriptor
// is only synthesized for redis so vault deployments never probe redis TLS files.
func storeBackend(ctx context.Context, settings *config.Settings, synth *descriptor.Synthesizer) StoreBackend {
	backend := StoreBackend{
		Kind:       strings.ToLower(strings.TrimSpace(settings.GetString(config.KeySecretStore, StoreRedis))),
		VaultMount: settings.GetString(config.KeyVaultKVMount),
		VaultPath:  settings.GetString(config.KeyVaultKVPath),
	}
	if backend.Kind == StoreRedis || backend.Kind == "" {
		backend.Cache = synth.Cache(ctx)
	}
	return backend
}

// lazyStore opens the coordination store on first use. A store that cannot be
// opened is replaced by cache.Unavailable so consumers take their fallback path.
type lazyStore struct {
	connect func(ctx context.Context) (cache.Store, error)
	log     logger.Logger

	mu    sync.Mutex
	store cache.Store
}

var (
	_ cache.Store         = (*lazyStore)(nil)
	_ cache.HealthChecker = (*lazyStore)(nil)
)

func (s *lazyStore) resolve(ctx context.Context) cache.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		store, err := s.connect(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Coordination store unavailable")
			store = cache.Unavailable(err)
		}
		s.store = store
	}
	return s.store
}

func (s *lazyStore) Get(ctx context.Context, name string) (string, error) {
	return s.resolve(ctx).Get(ctx, name)
}

func (s *lazyStore) Set(ctx context.Context, name, value string) error {
	return s.resolve(ctx).Set(ctx, name, value)
}

func (s *lazyStore) Health(ctx context.Context) error {
	if hc, ok := s.resolve(ctx).(cache.HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

// Close closes the opened store, if any. Later operations fail with cache.ErrClosed.
func (s *lazyStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.store
	s.store = cache.Unavailable(cache.ErrClosed)
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
