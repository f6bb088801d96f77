package redis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/descriptor"
)

const (
	testName  = "SECRET_TOKEN"
	testValue = "stored-value"
	readOnly  = "READONLY You can't write against a read only replica."
)

func descriptorFor(mr *miniredis.Miniredis) *descriptor.Cache {
	return &descriptor.Cache{Host: mr.Host(), Port: mr.Server().Addr().Port}
}

// setupTestRedis creates a miniredis server and a store for testing.
func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewStore(descriptorFor(mr), WithMaxRetries(-1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestNewStore(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, _ := setupTestRedis(t)

		assert.NotNil(t, store.primary)
		assert.Nil(t, store.replica)
		assert.False(t, store.closed.Load())
	})

	t.Run("NilDescriptor", func(t *testing.T) {
		store, err := NewStore(nil)
		assert.Nil(t, store)

		var configErr *cache.ConfigError
		assert.True(t, errors.As(err, &configErr))
	})

	t.Run("MissingHost", func(t *testing.T) {
		store, err := NewStore(&descriptor.Cache{Port: 6379})
		assert.Nil(t, store)

		var configErr *cache.ConfigError
		require.True(t, errors.As(err, &configErr))
		assert.Equal(t, "redis.host", configErr.Field)
	})

	t.Run("ConnectionFailedIsUnavailable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		desc := descriptorFor(mr)
		mr.Close()

		store, err := NewStore(desc, WithDialTimeout(200*time.Millisecond), WithMaxRetries(-1))
		assert.Nil(t, store)
		assert.ErrorIs(t, err, cache.ErrUnavailable)
	})

	t.Run("PrimaryDownReplicaUp", func(t *testing.T) {
		primary := miniredis.RunT(t)
		replica := miniredis.RunT(t)
		desc := descriptorFor(primary)
		desc.Replica = &descriptor.Replica{Host: replica.Host(), Port: replica.Server().Addr().Port}
		primary.Close()

		store, err := NewStore(desc, WithDialTimeout(200*time.Millisecond), WithMaxRetries(-1))
		require.NoError(t, err)
		defer store.Close()
		assert.NotNil(t, store.replica)
	})

	t.Run("DefaultPort", func(t *testing.T) {
		cfg, err := ConfigFromDescriptor(&descriptor.Cache{Host: "localhost"})
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", cfg.Address())
	})
}

func TestStoreGet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, mr := setupTestRedis(t)
		require.NoError(t, mr.Set(testName, testValue))

		value, err := store.Get(context.Background(), testName)
		require.NoError(t, err)
		assert.Equal(t, testValue, value)
	})

	t.Run("NotFound", func(t *testing.T) {
		store, _ := setupTestRedis(t)

		value, err := store.Get(context.Background(), "nonexistent")
		assert.Empty(t, value)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("Closed", func(t *testing.T) {
		store, _ := setupTestRedis(t)
		store.Close()

		_, err := store.Get(context.Background(), testName)
		assert.ErrorIs(t, err, cache.ErrClosed)
	})

	t.Run("ServerGoneIsUnavailable", func(t *testing.T) {
		store, mr := setupTestRedis(t)
		mr.Close()

		_, err := store.Get(context.Background(), testName)
		assert.ErrorIs(t, err, cache.ErrUnavailable)

		var opErr *cache.OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "get", opErr.Op)
		assert.Equal(t, testName, opErr.Key)
	})

	t.Run("FailsOverToReplica", func(t *testing.T) {
		primary := miniredis.RunT(t)
		replica := miniredis.RunT(t)
		require.NoError(t, replica.Set(testName, testValue))

		desc := descriptorFor(primary)
		desc.Replica = &descriptor.Replica{Host: replica.Host(), Port: replica.Server().Addr().Port}
		store, err := NewStore(desc, WithDialTimeout(200*time.Millisecond), WithMaxRetries(-1))
		require.NoError(t, err)
		defer store.Close()

		primary.Close()

		value, err := store.Get(context.Background(), testName)
		require.NoError(t, err)
		assert.Equal(t, testValue, value)
	})
}

func TestStoreSet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, mr := setupTestRedis(t)

		require.NoError(t, store.Set(context.Background(), testName, testValue))

		value, err := mr.Get(testName)
		require.NoError(t, err)
		assert.Equal(t, testValue, value)
		assert.Zero(t, mr.TTL(testName), "value must not expire")
	})

	t.Run("ReadOnlyReply", func(t *testing.T) {
		store, mr := setupTestRedis(t)
		mr.SetError(readOnly)

		err := store.Set(context.Background(), testName, testValue)
		assert.ErrorIs(t, err, cache.ErrReadOnly)
		assert.ErrorIs(t, err, cache.ErrUnavailable)
		assert.True(t, cache.IsUnavailable(err))
	})

	t.Run("ReplicaRefusesWrite", func(t *testing.T) {
		primary := miniredis.RunT(t)
		replica := miniredis.RunT(t)
		desc := descriptorFor(primary)
		desc.Replica = &descriptor.Replica{Host: replica.Host(), Port: replica.Server().Addr().Port}
		store, err := NewStore(desc, WithDialTimeout(200*time.Millisecond), WithMaxRetries(-1))
		require.NoError(t, err)
		defer store.Close()

		primary.Close()
		replica.SetError(readOnly)

		err = store.Set(context.Background(), testName, testValue)
		assert.ErrorIs(t, err, cache.ErrReadOnly)
	})

	t.Run("Closed", func(t *testing.T) {
		store, _ := setupTestRedis(t)
		store.Close()

		err := store.Set(context.Background(), testName, testValue)
		assert.ErrorIs(t, err, cache.ErrClosed)
	})
}

func TestStoreHealth(t *testing.T) {
	store, mr := setupTestRedis(t)
	assert.NoError(t, store.Health(context.Background()))

	mr.Close()
	assert.ErrorIs(t, store.Health(context.Background()), cache.ErrUnavailable)

	store.Close()
	assert.ErrorIs(t, store.Health(context.Background()), cache.ErrClosed)
}

func TestStoreStats(t *testing.T) {
	store, _ := setupTestRedis(t)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, store.config.Address(), stats["address"])
	assert.Contains(t, stats, "pool_total_conns")
	assert.NotContains(t, stats, "replica_address")
}

func TestStoreClose(t *testing.T) {
	store, _ := setupTestRedis(t)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
	assert.ErrorIs(t, store.Health(context.Background()), cache.ErrClosed)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Host: "localhost", Port: 6379, PoolSize: 10}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, field: "redis.host"},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, field: "redis.port"},
		{name: "database out of range", mutate: func(c *Config) { c.Database = 16 }, field: "redis.database"},
		{name: "zero pool", mutate: func(c *Config) { c.PoolSize = 0 }, field: "redis.pool_size"},
		{name: "negative dial timeout", mutate: func(c *Config) { c.DialTimeout = -time.Second }, field: "redis.dial_timeout"},
		{name: "read timeout below -1", mutate: func(c *Config) { c.ReadTimeout = -2 }, field: "redis.read_timeout"},
		{name: "write timeout below -1", mutate: func(c *Config) { c.WriteTimeout = -2 }, field: "redis.write_timeout"},
		{name: "replica without port", mutate: func(c *Config) { c.Replica = &descriptor.Replica{Host: "replica"} }, field: "redis.replica"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var configErr *cache.ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.field, configErr.Field)
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "::1", Port: 6380, Replica: &descriptor.Replica{Host: "replica.internal", Port: 6381}}

	assert.Equal(t, "[::1]:6380", cfg.Address())
	assert.Equal(t, "replica.internal:6381", cfg.ReplicaAddress())
	assert.Empty(t, (&Config{Host: "h", Port: 1}).ReplicaAddress())
}

func TestConfigFromDescriptorTLS(t *testing.T) {
	t.Run("SSLWithoutMaterial", func(t *testing.T) {
		cfg, err := ConfigFromDescriptor(&descriptor.Cache{Host: "redis.internal", Port: 6380, SSL: true})
		require.NoError(t, err)
		require.NotNil(t, cfg.TLS)
		assert.Equal(t, "redis.internal", cfg.TLS.ServerName)
		assert.Empty(t, cfg.TLS.Certificates)
		assert.False(t, cfg.TLS.InsecureSkipVerify)
	})

	t.Run("ReplicaServerName", func(t *testing.T) {
		cfg, err := ConfigFromDescriptor(&descriptor.Cache{
			Host: "primary.internal", Port: 6380, SSL: true,
			Replica: &descriptor.Replica{Host: "replica.internal", Port: 6381},
		})
		require.NoError(t, err)

		primary := cfg.options(cfg.Address())
		replica := cfg.replicaOptions()
		require.NotNil(t, primary.TLSConfig)
		require.NotNil(t, replica.TLSConfig)
		assert.Equal(t, "primary.internal", primary.TLSConfig.ServerName)
		assert.Equal(t, "replica.internal", replica.TLSConfig.ServerName)
		assert.Equal(t, "replica.internal:6381", replica.Addr)
		assert.NotSame(t, primary.TLSConfig, replica.TLSConfig)
		assert.Equal(t, "primary.internal", cfg.TLS.ServerName)
	})

	t.Run("ReplicaWithoutSSL", func(t *testing.T) {
		cfg, err := ConfigFromDescriptor(&descriptor.Cache{
			Host: "primary.internal", Port: 6379,
			Replica: &descriptor.Replica{Host: "replica.internal", Port: 6381},
		})
		require.NoError(t, err)
		assert.Nil(t, cfg.replicaOptions().TLSConfig)
	})

	t.Run("NoSSL", func(t *testing.T) {
		cfg, err := ConfigFromDescriptor(&descriptor.Cache{Host: "redis.internal", Port: 6379})
		require.NoError(t, err)
		assert.Nil(t, cfg.TLS)
	})

	t.Run("UnreadableCAFile", func(t *testing.T) {
		desc := &descriptor.Cache{
			Host: "redis.internal", Port: 6380, SSL: true,
			TLS: &descriptor.TLSParams{CAFile: filepath.Join(t.TempDir(), "missing.crt"), VerifyPeer: true},
		}
		_, err := ConfigFromDescriptor(desc)

		var configErr *cache.ConfigError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "redis.tls.ca_file", configErr.Field)
	})

	t.Run("CAFileWithoutCertificates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ca.crt")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		desc := &descriptor.Cache{
			Host: "redis.internal", Port: 6380, SSL: true,
			TLS: &descriptor.TLSParams{CAFile: path, VerifyPeer: true},
		}
		_, err := ConfigFromDescriptor(desc)
		assert.Error(t, err)
	})
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))
	assert.Equal(t, cache.ErrUnavailable, classify(context.DeadlineExceeded))
	assert.Nil(t, classify(errors.New("boom")))
}
