//go:build integration

package containers

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gaborage/go-settings/descriptor"
)

// RedisContainerConfig holds configuration for the Redis test container.
type RedisContainerConfig struct {
	// ImageTag specifies the Redis version (default: "7-alpine")
	ImageTag string
	// StartupTimeout for container initialization (default: 60 seconds)
	StartupTimeout time.Duration
}

// DefaultRedisConfig returns the default Redis container configuration.
func DefaultRedisConfig() *RedisContainerConfig {
	return &RedisContainerConfig{
		ImageTag:       "7-alpine",
		StartupTimeout: 60 * time.Second,
	}
}

// RedisContainer is a running Redis server.
type RedisContainer struct {
	host string
	port int
}

// StartRedisContainer starts Redis and terminates it when t finishes. If cfg is
// nil, DefaultRedisConfig is used.
func StartRedisContainer(ctx context.Context, t *testing.T, cfg *RedisContainerConfig) (*RedisContainer, error) {
	t.Helper()

	if cfg == nil {
		cfg = DefaultRedisConfig()
	}
	requireDocker(ctx, t)

	container, err := redis.Run(ctx,
		fmt.Sprintf("redis:%s", cfg.ImageTag),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(cfg.StartupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis container: %w", err)
	}
	terminateOnCleanup(t, "Redis", container)

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis port: %w", err)
	}

	r := &RedisContainer{host: host, port: mappedPort.Int()}
	t.Logf("Redis container started at %s", r.Address())
	return r, nil
}

// MustStartRedisContainer is StartRedisContainer that fails the test on error.
func MustStartRedisContainer(ctx context.Context, t *testing.T, cfg *RedisContainerConfig) *RedisContainer {
	t.Helper()

	container, err := StartRedisContainer(ctx, t, cfg)
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	return container
}

// Host returns the container host
func (r *RedisContainer) Host() string { return r.host }

// Port returns the mapped Redis port
func (r *RedisContainer) Port() int { return r.port }

// Address returns host:port.
func (r *RedisContainer) Address() string {
	return net.JoinHostPort(r.host, strconv.Itoa(r.port))
}

// Descriptor returns a cache descriptor pointing at the container.
func (r *RedisContainer) Descriptor() *descriptor.Cache {
	return &descriptor.Cache{Host: r.host, Port: r.port}
}
