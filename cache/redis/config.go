package redis

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/descriptor"
)

const defaultPort = 6379

// Config holds Redis-specific configuration options.
type Config struct {
	// Host is the Redis server hostname or IP address.
	Host string

	// Port is the Redis server port (default: 6379).
	Port int

	Username string
	Password string //nolint:gosec // G117 - config field, loaded from settings

	// Database number to use (default: 0).
	// Redis supports databases 0-15 by default.
	Database int

	// Replica is dialed when the primary is unreachable. Optional.
	Replica *descriptor.Replica

	// TLS enables TLS when non-nil.
	TLS *tls.Config

	// PoolSize is the maximum number of socket connections (default: 10).
	PoolSize int

	// DialTimeout is the timeout for establishing new connections (default: 5s).
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads (default: 3s).
	// -1 disables timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes (default: 3s).
	// -1 disables timeout.
	WriteTimeout time.Duration

	// MaxRetries is the maximum number of retries before giving up (default: 3).
	// -1 disables retries.
	MaxRetries int

	// PingTimeout bounds the connectivity check in NewStore (default: 5s).
	PingTimeout time.Duration
}

// Option customizes the Config derived from a cache descriptor.
type Option func(*Config)

// WithDialTimeout sets the connection timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Config) { c.DialTimeout = d }
}

// WithPoolSize sets the maximum number of connections per endpoint.
func WithPoolSize(n int) Option {
	return func(c *Config) { c.PoolSize = n }
}

// WithMaxRetries sets the number of retries before a command fails.
func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = n }
}

// WithPingTimeout bounds the startup connectivity check.
func WithPingTimeout(d time.Duration) Option {
	return func(c *Config) { c.PingTimeout = d }
}

// ConfigFromDescriptor converts a cache descriptor into a Config.
func ConfigFromDescriptor(desc *descriptor.Cache, opts ...Option) (*Config, error) {
	if desc == nil {
		return nil, cache.NewConfigError("redis", "descriptor is required", nil)
	}

	cfg := &Config{
		Host:         desc.Host,
		Port:         desc.Port,
		Username:     desc.Username,
		Password:     desc.Password,
		Database:     desc.DB,
		Replica:      desc.Replica,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
		PingTimeout:  5 * time.Second,
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	if desc.SSL {
		tlsCfg, err := tlsConfig(desc)
		if err != nil {
			return nil, err
		}
		cfg.TLS = tlsCfg
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, cfg.Validate()
}

// tlsConfig builds client TLS settings from descriptor material. The client
// certificate is optional; without a CA file the system pool is used.
func tlsConfig(desc *descriptor.Cache) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: desc.Host,
	}
	if desc.TLS == nil {
		return cfg, nil
	}

	if desc.TLS.HasClientCertificate() {
		cfg.Certificates = []tls.Certificate{*desc.TLS.KeyPair}
	}
	if desc.TLS.CAFile != "" {
		pem, err := os.ReadFile(desc.TLS.CAFile)
		if err != nil {
			return nil, cache.NewConfigError("redis.tls.ca_file", "cannot read CA file", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, cache.NewConfigError("redis.tls.ca_file", "no certificates found in "+desc.TLS.CAFile, nil)
		}
		cfg.RootCAs = pool
	}
	cfg.InsecureSkipVerify = !desc.TLS.VerifyPeer //nolint:gosec // G402 - opt-in
	return cfg, nil
}

// Validate performs fail-fast validation of Redis configuration.
// Returns error if configuration is invalid.
func (c *Config) Validate() error {
	if c.Host == "" {
		return cache.NewConfigError("redis.host", "host is required", nil)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return cache.NewConfigError("redis.port", fmt.Sprintf("invalid port: %d", c.Port), nil)
	}

	if c.Database < 0 || c.Database > 15 {
		return cache.NewConfigError("redis.database", fmt.Sprintf("invalid database number: %d (must be 0-15)", c.Database), nil)
	}

	if c.PoolSize <= 0 {
		return cache.NewConfigError("redis.pool_size", fmt.Sprintf("invalid pool size: %d (must be > 0)", c.PoolSize), nil)
	}

	if c.DialTimeout < 0 {
		return cache.NewConfigError("redis.dial_timeout", "dial timeout cannot be negative", nil)
	}

	if c.ReadTimeout < -1 {
		return cache.NewConfigError("redis.read_timeout", "read timeout cannot be less than -1", nil)
	}

	if c.WriteTimeout < -1 {
		return cache.NewConfigError("redis.write_timeout", "write timeout cannot be less than -1", nil)
	}

	if c.Replica != nil && (c.Replica.Host == "" || c.Replica.Port <= 0 || c.Replica.Port > 65535) {
		return cache.NewConfigError("redis.replica", fmt.Sprintf("invalid replica endpoint %s:%d", c.Replica.Host, c.Replica.Port), nil)
	}

	return nil
}

// Address returns the Redis server address in "host:port" format.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReplicaAddress returns the replica address, or "" without a replica.
func (c *Config) ReplicaAddress() string {
	if c.Replica == nil {
		return ""
	}
	return net.JoinHostPort(c.Replica.Host, strconv.Itoa(c.Replica.Port))
}
