// Package postgresql turns a database descriptor into a pgx connection
// configuration and a pooled *sql.DB.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/gaborage/go-settings/descriptor"
	"github.com/gaborage/go-settings/logger"
)

const (
	defaultPort        = 5432
	defaultPingTimeout = 10 * time.Second
)

// Connection is a pooled PostgreSQL handle built from a descriptor.
type Connection struct {
	db     *sql.DB
	desc   *descriptor.Database
	logger logger.Logger
}

var (
	openPostgresDB = func(cfg *pgx.ConnConfig) *sql.DB {
		return stdlib.OpenDB(*cfg)
	}
	pingPostgresDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// quoteDSN quotes a DSN value according to libpq rules:
// - Returns double single quotes for empty strings (empty value)
// - Escapes backslashes and single quotes
// - Wraps in single quotes when value contains non-alphanumeric/._-,/ characters
func quoteDSN(value string) string {
	if value == "" {
		return "''"
	}

	needsQuoting := false
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != '.' && r != '_' && r != '-' && r != ',' && r != '/' {
			needsQuoting = true
			break
		}
	}

	if !needsQuoting {
		return value
	}

	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "'", "\\'")

	return "'" + escaped + "'"
}

// DSN renders desc as a libpq keyword/value connection string. A socket
// directory takes the place of the host list; a backup host is appended as a
// fallback target.
func DSN(desc *descriptor.Database) string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", key, quoteDSN(value)))
		}
	}

	if desc.Socket != "" {
		add("host", desc.Socket)
	} else if desc.Host != "" {
		hosts := []string{desc.Host}
		ports := []string{strconv.Itoa(portOrDefault(desc.Port))}
		if desc.BackupHost != "" {
			hosts = append(hosts, desc.BackupHost)
			ports = append(ports, strconv.Itoa(portOrDefault(desc.BackupPort)))
		}
		add("host", strings.Join(hosts, ","))
		add("port", strings.Join(ports, ","))
	}
	if desc.Socket != "" && desc.Port != 0 {
		add("port", strconv.Itoa(desc.Port))
	}

	add("user", desc.Username)
	add("password", desc.Password)
	add("dbname", desc.Database)
	add("sslmode", desc.SSLMode)
	add("sslcert", desc.SSLCert)
	add("sslkey", desc.SSLKey)
	add("sslrootcert", desc.SSLRootCert)
	if desc.ConnectTimeout > 0 {
		add("connect_timeout", strconv.Itoa(desc.ConnectTimeout))
	}

	return strings.Join(parts, " ")
}

// ReplicaDSN renders the connection string for the read replica, if any.
func ReplicaDSN(desc *descriptor.Database) (string, bool) {
	if desc.ReplicaHost == "" {
		return "", false
	}
	replica := *desc
	replica.Socket = ""
	replica.Host = desc.ReplicaHost
	replica.Port = desc.ReplicaPort
	replica.BackupHost = ""
	replica.BackupPort = 0
	return DSN(&replica), true
}

func portOrDefault(port int) int {
	if port == 0 {
		return defaultPort
	}
	return port
}

// ParseConfig builds the pgx configuration for desc. Session variables become
// runtime parameters. Without prepared statements every query is sent with the
// extended protocol and no statement or description cache.
func ParseConfig(desc *descriptor.Database) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(DSN(desc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	names := make([]string, 0, len(desc.Variables))
	for name := range desc.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cfg.RuntimeParams[name] = runtimeParam(desc.Variables[name])
	}

	if !desc.PreparedStatements {
		cfg.DefaultQueryExecMode = pgx.QueryExecModeExec
		cfg.StatementCacheCapacity = 0
		cfg.DescriptionCacheCapacity = 0
	}
	return cfg, nil
}

func runtimeParam(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "on"
		}
		return "off"
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// NewConnection opens a pool for desc and checks it with a ping. The pool holds
// at most desc.Pool connections and closes connections idle for longer than
// desc.IdleTimeout seconds.
func NewConnection(desc *descriptor.Database, log logger.Logger) (*Connection, error) {
	if desc == nil {
		return nil, fmt.Errorf("database descriptor is required")
	}
	if desc.Adapter != "" && desc.Adapter != descriptor.AdapterPostgreSQL {
		return nil, fmt.Errorf("unsupported database adapter %q", desc.Adapter)
	}

	pgxConfig, err := ParseConfig(desc)
	if err != nil {
		return nil, err
	}

	db := openPostgresDB(pgxConfig)

	if desc.Pool > 0 {
		db.SetMaxOpenConns(desc.Pool)
		db.SetMaxIdleConns(desc.Pool)
	}
	if desc.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(time.Duration(desc.IdleTimeout) * time.Second)
	}

	timeout := defaultPingTimeout
	if desc.ConnectTimeout > 0 {
		timeout = time.Duration(desc.ConnectTimeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := pingPostgresDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close PostgreSQL database connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	log.Info().
		Str("host", pgxConfig.Host).
		Int("port", int(pgxConfig.Port)).
		Str("database", desc.Database).
		Int("fallbacks", len(pgxConfig.Fallbacks)).
		Msg("Connected to PostgreSQL database")

	return &Connection{
		db:     db,
		desc:   desc,
		logger: log,
	}, nil
}

// DB returns the underlying pool.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Health checks database connectivity
func (c *Connection) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.db.PingContext(ctx)
}

// Stats returns database connection statistics
func (c *Connection) Stats() (map[string]any, error) {
	stats := c.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	c.logger.Info().Msg("Closing PostgreSQL database connection")
	return c.db.Close()
}

// DatabaseType returns the database type
func (c *Connection) DatabaseType() string {
	return descriptor.AdapterPostgreSQL
}
