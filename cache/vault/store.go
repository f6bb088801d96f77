// Package vault implements cache.Store on a HashiCorp Vault KV version 2 secret.
// Every name is a field of one secret, so a fleet shares values by pointing at
// the same mount and path.
package vault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/cache/internal/tracking"
)

const system = "vault"

// Store reads and writes fields of a single KV-v2 secret.
type Store struct {
	kv   *vault.KVv2
	api  *vault.Client
	path string
}

var (
	_ cache.Store         = (*Store)(nil)
	_ cache.HealthChecker = (*Store)(nil)
)

// NewStore returns a Store on the secret at path under the KV-v2 mount.
func NewStore(client *vault.Client, mount, path string) (*Store, error) {
	if client == nil {
		return nil, cache.NewConfigError("vault.client", "client is required", nil)
	}
	if mount == "" || path == "" {
		return nil, cache.NewConfigError("vault.path", "mount and path must be non-empty", nil)
	}
	return &Store{kv: client.KVv2(mount), api: client, path: path}, nil
}

// NewStoreFromEnv builds the Vault client from VAULT_ADDR, VAULT_TOKEN and the
// other standard Vault environment variables.
func NewStoreFromEnv(mount, path string) (*Store, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, cache.NewConfigError("vault.env", "cannot read Vault environment", err)
	}
	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, cache.NewConfigError("vault.client", "cannot create Vault client", err)
	}
	return NewStore(client, mount, path)
}

// Get returns the field name of the secret.
// Returns cache.ErrNotFound if the secret or the field does not exist.
func (s *Store) Get(ctx context.Context, name string) (string, error) {
	start := time.Now()
	data, err := s.read(ctx)
	if err != nil {
		opErr := cache.NewOperationError(tracking.OpGet, name, classify(err, false), err)
		tracking.RecordStoreOperation(ctx, system, tracking.OpGet, time.Since(start), opErr)
		return "", opErr
	}

	raw, ok := data[name]
	if !ok || raw == nil {
		tracking.RecordStoreOperation(ctx, system, tracking.OpGet, time.Since(start), cache.ErrNotFound)
		return "", cache.ErrNotFound
	}
	value, ok := raw.(string)
	if !ok {
		err := fmt.Errorf("value at %s#%s is not a string", s.path, name)
		tracking.RecordStoreOperation(ctx, system, tracking.OpGet, time.Since(start), err)
		return "", cache.NewOperationError(tracking.OpGet, name, nil, err)
	}

	tracking.RecordStoreOperation(ctx, system, tracking.OpGet, time.Since(start), nil)
	return value, nil
}

// Set writes the field name, keeping the other fields of the secret. The
// read-modify-write is not atomic; concurrent writers of different fields may
// lose updates.
func (s *Store) Set(ctx context.Context, name, value string) error {
	start := time.Now()
	err := s.set(ctx, name, value)
	if err != nil {
		err = cache.NewOperationError(tracking.OpSet, name, classify(err, true), err)
	}
	tracking.RecordStoreOperation(ctx, system, tracking.OpSet, time.Since(start), err)
	return err
}

func (s *Store) set(ctx context.Context, name, value string) error {
	data, err := s.read(ctx)
	if err != nil {
		return err
	}

	merged := make(map[string]any, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	merged[name] = value

	_, err = s.kv.Put(ctx, s.path, merged)
	return err
}

// read returns the current secret data; a missing secret reads as empty.
func (s *Store) read(ctx context.Context) (map[string]any, error) {
	secret, err := s.kv.Get(ctx, s.path)
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return secret.Data, nil
}

// Health reports whether Vault is initialized and unsealed.
func (s *Store) Health(ctx context.Context) error {
	start := time.Now()
	resp, err := s.api.Sys().HealthWithContext(ctx)
	if err == nil && resp.Sealed {
		err = errors.New("vault is sealed")
	}
	if err != nil {
		err = cache.NewOperationError(tracking.OpHealth, s.path, cache.ErrUnavailable, err)
	}
	tracking.RecordStoreOperation(ctx, system, tracking.OpHealth, time.Since(start), err)
	return err
}

// classify maps Vault client errors onto the cache sentinels. A 403 is a
// refused write when write is set.
func classify(err error, write bool) error {
	var respErr *vault.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusForbidden && write:
			return cache.ErrReadOnly
		case respErr.StatusCode == http.StatusTooManyRequests,
			respErr.StatusCode >= http.StatusInternalServerError:
			return cache.ErrUnavailable
		}
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return cache.ErrUnavailable
	}
	return nil
}
