//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gaborage/go-settings/descriptor"
)

// PostgreSQLContainerConfig holds configuration for the PostgreSQL test container.
type PostgreSQLContainerConfig struct {
	// ImageTag specifies the PostgreSQL version (default: "17-alpine")
	ImageTag string
	// Username for PostgreSQL authentication (default: "testuser")
	Username string
	// Password for PostgreSQL authentication (default: "testpass")
	Password string
	// Database name to create (default: "testdb")
	Database string
	// StartupTimeout for container initialization (default: 60 seconds)
	StartupTimeout time.Duration
}

// DefaultPostgreSQLConfig returns the default PostgreSQL container configuration.
func DefaultPostgreSQLConfig() *PostgreSQLContainerConfig {
	return &PostgreSQLContainerConfig{
		ImageTag:       "17-alpine",
		Username:       "testuser",
		Password:       "testpass",
		Database:       "testdb",
		StartupTimeout: 60 * time.Second,
	}
}

// PostgreSQLContainer is a running PostgreSQL server.
type PostgreSQLContainer struct {
	cfg  *PostgreSQLContainerConfig
	host string
	port int
}

// StartPostgreSQLContainer starts PostgreSQL and terminates it when t finishes.
// If cfg is nil, DefaultPostgreSQLConfig is used.
func StartPostgreSQLContainer(ctx context.Context, t *testing.T, cfg *PostgreSQLContainerConfig) (*PostgreSQLContainer, error) {
	t.Helper()

	if cfg == nil {
		cfg = DefaultPostgreSQLConfig()
	}
	requireDocker(ctx, t)

	container, err := postgres.Run(ctx,
		fmt.Sprintf("postgres:%s", cfg.ImageTag),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2). // Postgres restarts after initial setup
				WithStartupTimeout(cfg.StartupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}
	terminateOnCleanup(t, "PostgreSQL", container)

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL port: %w", err)
	}

	t.Logf("PostgreSQL container started at %s:%d", host, mappedPort.Int())
	return &PostgreSQLContainer{cfg: cfg, host: host, port: mappedPort.Int()}, nil
}

// MustStartPostgreSQLContainer is StartPostgreSQLContainer that fails the test on error.
func MustStartPostgreSQLContainer(ctx context.Context, t *testing.T, cfg *PostgreSQLContainerConfig) *PostgreSQLContainer {
	t.Helper()

	container, err := StartPostgreSQLContainer(ctx, t, cfg)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	return container
}

// Descriptor returns a database descriptor pointing at the container with TLS disabled.
func (p *PostgreSQLContainer) Descriptor() *descriptor.Database {
	return &descriptor.Database{
		Adapter:        descriptor.AdapterPostgreSQL,
		Pool:           4,
		ConnectTimeout: 5,
		Host:           p.host,
		Port:           p.port,
		Username:       p.cfg.Username,
		Password:       p.cfg.Password,
		Database:       p.cfg.Database,
		HostNames:      []string{p.host},
		SSLMode:        "disable",
	}
}
