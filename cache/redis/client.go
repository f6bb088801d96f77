// Package redis implements cache.Store on Redis through go-redis. When the cache
// descriptor names a replica the store fails over to it while the primary is
// unreachable; writes the replica refuses surface as cache.ErrReadOnly.
package redis

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/cache/internal/tracking"
	"github.com/gaborage/go-settings/descriptor"
)

const system = "redis"

// Reply prefixes for a server that is up but cannot serve the command right now.
var unavailablePrefixes = []string{"LOADING", "MASTERDOWN", "CLUSTERDOWN", "TRYAGAIN"}

// Store implements cache.Store using Redis as the backend.
type Store struct {
	primary *redis.Client
	replica *redis.Client
	config  *Config
	closed  atomic.Bool
}

var (
	_ cache.Store         = (*Store)(nil)
	_ cache.HealthChecker = (*Store)(nil)
)

// NewStore creates a Store from a cache descriptor.
func NewStore(desc *descriptor.Cache, opts ...Option) (*Store, error) {
	cfg, err := ConfigFromDescriptor(desc, opts...)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New creates a Store from cfg and checks connectivity with PING. The store is
// usable when either the primary or the replica answers.
func New(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		primary: redis.NewClient(cfg.options(cfg.Address())),
		config:  cfg,
	}
	if cfg.Replica != nil {
		s.replica = redis.NewClient(cfg.replicaOptions())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := s.ping(ctx); err != nil {
		_ = s.closeClients()
		return nil, err
	}
	return s, nil
}

func (c *Config) options(addr string) *redis.Options {
	return &redis.Options{
		Addr:         addr,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.Database,
		TLSConfig:    c.TLS,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		MaxRetries:   c.MaxRetries,
	}
}

// replicaOptions verifies the replica certificate against the replica host.
func (c *Config) replicaOptions() *redis.Options {
	opts := c.options(c.ReplicaAddress())
	if c.TLS != nil {
		opts.TLSConfig = c.TLS.Clone()
		opts.TLSConfig.ServerName = c.Replica.Host
	}
	return opts
}

func (s *Store) ping(ctx context.Context) error {
	err := s.primary.Ping(ctx).Err()
	if err != nil && s.replica != nil && classify(err) == cache.ErrUnavailable {
		err = s.replica.Ping(ctx).Err()
	}
	if err != nil {
		return cache.NewOperationError(tracking.OpHealth, s.config.Address(), classify(err), err)
	}
	return nil
}

// Get retrieves the value stored under name.
// Returns cache.ErrNotFound if name holds no value.
func (s *Store) Get(ctx context.Context, name string) (string, error) {
	if s.closed.Load() {
		return "", cache.ErrClosed
	}

	start := time.Now()
	value, err := s.primary.Get(ctx, name).Result()
	if s.shouldFailOver(err) {
		value, err = s.replica.Get(ctx, name).Result()
	}

	switch {
	case err == nil:
		tracking.RecordStoreOperation(ctx, system, tracking.OpGet, time.Since(start), nil)
		return value, nil
	case errors.Is(err, redis.Nil):
		tracking.RecordStoreOperation(ctx, system, tracking.OpGet, time.Since(start), cache.ErrNotFound)
		return "", cache.ErrNotFound
	}

	opErr := cache.NewOperationError(tracking.OpGet, name, classify(err), err)
	tracking.RecordStoreOperation(ctx, system, tracking.OpGet, time.Since(start), opErr)
	return "", opErr
}

// Set stores value under name without expiration.
func (s *Store) Set(ctx context.Context, name, value string) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}

	start := time.Now()
	err := s.primary.Set(ctx, name, value, 0).Err()
	if s.shouldFailOver(err) {
		err = s.replica.Set(ctx, name, value, 0).Err()
	}

	if err != nil {
		opErr := cache.NewOperationError(tracking.OpSet, name, classify(err), err)
		tracking.RecordStoreOperation(ctx, system, tracking.OpSet, time.Since(start), opErr)
		return opErr
	}
	tracking.RecordStoreOperation(ctx, system, tracking.OpSet, time.Since(start), nil)
	return nil
}

// shouldFailOver reports whether err means the primary is unreachable and a
// replica can be tried instead.
func (s *Store) shouldFailOver(err error) bool {
	return err != nil && s.replica != nil && classify(err) == cache.ErrUnavailable
}

// Health checks that the primary or the replica answers PING.
func (s *Store) Health(ctx context.Context) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}

	start := time.Now()
	err := s.ping(ctx)
	tracking.RecordStoreOperation(ctx, system, tracking.OpHealth, time.Since(start), err)
	return err
}

// Stats returns connection pool statistics.
func (s *Store) Stats() (map[string]any, error) {
	if s.closed.Load() {
		return nil, cache.ErrClosed
	}

	poolStats := s.primary.PoolStats()
	stats := map[string]any{
		"address":          s.config.Address(),
		"pool_hits":        poolStats.Hits,
		"pool_misses":      poolStats.Misses,
		"pool_timeouts":    poolStats.Timeouts,
		"pool_total_conns": poolStats.TotalConns,
		"pool_idle_conns":  poolStats.IdleConns,
		"pool_stale_conns": poolStats.StaleConns,
	}
	if s.replica != nil {
		stats["replica_address"] = s.config.ReplicaAddress()
		stats["replica_pool_total_conns"] = s.replica.PoolStats().TotalConns
	}
	return stats, nil
}

// Close closes the Redis clients and releases resources.
// Close is idempotent - calls after the first return nil.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.closeClients()
}

func (s *Store) closeClients() error {
	err := s.primary.Close()
	if s.replica != nil {
		err = errors.Join(err, s.replica.Close())
	}
	return err
}

// classify maps a go-redis error onto the cache sentinels. It returns nil for
// errors that are neither read-only nor transient.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var replyErr redis.Error
	if errors.As(err, &replyErr) && !errors.Is(err, redis.Nil) {
		msg := replyErr.Error()
		if strings.HasPrefix(msg, "READONLY") {
			return cache.ErrReadOnly
		}
		for _, prefix := range unavailablePrefixes {
			if strings.HasPrefix(msg, prefix) {
				return cache.ErrUnavailable
			}
		}
		return nil
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, redis.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		return cache.ErrUnavailable
	}
	return nil
}
