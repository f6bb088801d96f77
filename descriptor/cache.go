package descriptor

import (
	"context"
	"strings"

	"github.com/gaborage/go-settings/config"
)

// TestNamespace is the cache database selected when running tests.
const TestNamespace = 1

// Environment variables consulted, in order, for cache TLS material.
var (
	redisCertEnv = []string{"REDIS_SSL_CERT", "REDIS_CLIENT_CERT", "REDIS_TLS_CERT"}
	redisKeyEnv  = []string{"REDIS_SSL_KEY", "REDIS_CLIENT_KEY", "REDIS_TLS_KEY"}
	redisCAEnv   = []string{"REDIS_SSL_CA", "REDIS_CA_FILE", "REDIS_TLS_CA"}
)

// Cache describes how to reach the coordination cache.
type Cache struct {
	Host               string   `json:"host,omitempty" validate:"omitempty,hostname_rfc1123|ip"`
	Port               int      `json:"port,omitempty" validate:"gte=0,lte=65535"`
	Username           string   `json:"username,omitempty"`
	Password           string   `json:"password,omitempty"`
	DB                 int      `json:"db,omitempty" validate:"gte=0"`
	Replica            *Replica `json:"replica,omitempty"`
	SkipClientCommands bool     `json:"skip_client_commands,omitempty"`
	SSL                bool     `json:"ssl,omitempty"`

	// TLS is nil unless TLS was requested and some material was found.
	TLS *TLSParams `json:"tls,omitempty"`
}

// Replica is the endpoint a failover-capable driver switches to when the
// primary is unreachable.
type Replica struct {
	Host string `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port int    `json:"port" validate:"required,gte=1,lte=65535"`
}

// cacheKeys names the settings read for one cache descriptor. The message bus
// variant carries the same names with a prefix.
type cacheKeys struct {
	host, port                   string
	replicaHost, replicaPort     string
	slaveHost, slavePort         string
	username, password, db, skip string
}

func newCacheKeys(prefix string) cacheKeys {
	return cacheKeys{
		host:        prefix + config.KeyRedisHost,
		port:        prefix + config.KeyRedisPort,
		replicaHost: prefix + config.KeyRedisReplicaHost,
		replicaPort: prefix + config.KeyRedisReplicaPort,
		slaveHost:   prefix + config.KeyRedisSlaveHost,
		slavePort:   prefix + config.KeyRedisSlavePort,
		username:    prefix + config.KeyRedisUsername,
		password:    prefix + config.KeyRedisPassword,
		db:          prefix + config.KeyRedisDB,
		skip:        prefix + config.KeyRedisSkipClientCommands,
	}
}

// Cache synthesizes the coordination cache descriptor. ctx bounds the
// privileged copy used when certificate files are not readable.
func (s *Synthesizer) Cache(ctx context.Context) *Cache {
	return s.cache(ctx, newCacheKeys(""))
}

// MessageBus synthesizes the descriptor for the message bus cache. It is the
// coordination cache descriptor unless message_bus_redis_enabled is set.
func (s *Synthesizer) MessageBus(ctx context.Context) *Cache {
	if !s.settings.Get(config.KeyMessageBusRedisEnabled).Truthy() {
		return s.Cache(ctx)
	}
	return s.cache(ctx, newCacheKeys(config.KeyMessageBusRedisPrefix))
}

func (s *Synthesizer) cache(ctx context.Context, keys cacheKeys) *Cache {
	c := &Cache{
		Host:     s.stringSetting(keys.host),
		Port:     s.intSetting(keys.port),
		Username: s.stringSetting(keys.username),
		Password: s.stringSetting(keys.password),
		DB:       s.intSetting(keys.db),
	}
	if s.testMode {
		c.DB = TestNamespace
	}
	c.Replica = s.replica(keys)
	c.SkipClientCommands = s.settings.Get(keys.skip).Truthy()

	if s.tlsRequested() {
		c.SSL = true
		c.TLS = s.cacheTLS(ctx)
	}
	return c
}

// replica returns replica metadata when both endpoint halves are configured,
// directly or through the legacy slave keys, and the driver can fail over.
func (s *Synthesizer) replica(keys cacheKeys) *Replica {
	if !s.failover {
		return nil
	}
	host := s.stringSetting(keys.replicaHost)
	if host == "" {
		host = s.stringSetting(keys.slaveHost)
	}
	port := s.intSetting(keys.replicaPort)
	if port == 0 {
		port = s.intSetting(keys.slavePort)
	}
	if host == "" || port == 0 {
		return nil
	}
	return &Replica{Host: host, Port: port}
}

// tlsRequested recognizes redis_use_ssl as boolean true or the string "true" in
// any case, and the legacy redis_ssl flag in the same forms.
func (s *Synthesizer) tlsRequested() bool {
	for _, key := range []string{config.KeyRedisUseSSL, config.KeyRedisSSL} {
		if strings.EqualFold(strings.TrimSpace(s.settings.Get(key).String()), "true") {
			return true
		}
	}
	return false
}
