package descriptor

import (
	"strings"

	"github.com/gaborage/go-settings/config"
)

// AdapterPostgreSQL identifies the relational database driver.
const AdapterPostgreSQL = "postgresql"

// EnvironmentProduction keys the database descriptor for frameworks that expect
// one descriptor per environment.
const EnvironmentProduction = "production"

// sslModesWithCertificates are the modes for which client certificate paths are attached.
var sslModesWithCertificates = map[string]bool{
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Environment variables consulted, in order, for database certificate paths.
var (
	postgresCertEnv = []string{"POSTGRES_SSL_CERT", "POSTGRES_CLIENT_CERT"}
	postgresKeyEnv  = []string{"POSTGRES_SSL_KEY", "POSTGRES_CLIENT_KEY"}
	postgresCAEnv   = []string{"POSTGRES_SSL_CA", "POSTGRES_CA_FILE"}
)

// Database describes how to reach and authenticate to the relational database.
// Zero-valued optional fields mean "not configured".
type Database struct {
	Adapter        string `json:"adapter" validate:"required"`
	Pool           int    `json:"pool,omitempty" validate:"gte=0"`
	ConnectTimeout int    `json:"connect_timeout,omitempty" validate:"gte=0"`
	Socket         string `json:"socket,omitempty"`
	Host           string `json:"host,omitempty" validate:"omitempty,hostname_rfc1123|ip"`
	BackupHost     string `json:"backup_host,omitempty" validate:"omitempty,hostname_rfc1123|ip"`
	Port           int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	BackupPort     int    `json:"backup_port,omitempty" validate:"gte=0,lte=65535"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	ReplicaHost    string `json:"replica_host,omitempty" validate:"omitempty,hostname_rfc1123|ip"`
	ReplicaPort    int    `json:"replica_port,omitempty" validate:"gte=0,lte=65535"`

	// HostNames lists the hostnames the application answers on. CDN hostnames are
	// folded in as well; consumers have historically read them from here.
	HostNames          []string `json:"host_names"`
	Database           string   `json:"database"`
	PreparedStatements bool     `json:"prepared_statements"`
	AdvisoryLocks      bool     `json:"advisory_locks"`
	IdleTimeout        int      `json:"idle_timeout,omitempty" validate:"gte=0"`
	ReapingFrequency   int      `json:"reaping_frequency,omitempty" validate:"gte=0"`

	// Variables are session variables set on every connection.
	Variables map[string]any `json:"variables,omitempty" validate:"dive,keys,session_variable,endkeys"`

	SSLMode     string `json:"sslmode,omitempty" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	SSLCert     string `json:"sslcert,omitempty"`
	SSLKey      string `json:"sslkey,omitempty"`
	SSLRootCert string `json:"sslrootcert,omitempty"`
}

// ByEnvironment returns the descriptor keyed by environment name.
func (d *Database) ByEnvironment() map[string]*Database {
	return map[string]*Database{EnvironmentProduction: d}
}

// Database synthesizes the database descriptor. overrides are applied to the
// session variables last and win over db_variables_* settings.
func (s *Synthesizer) Database(overrides map[string]any) *Database {
	d := &Database{Adapter: AdapterPostgreSQL}

	d.Pool = s.intSetting(config.KeyDBPool)
	d.ConnectTimeout = s.intSetting(config.KeyDBConnectTimeout)
	d.Socket = s.stringSetting(config.KeyDBSocket)
	d.Host = s.stringSetting(config.KeyDBHost)
	d.BackupHost = s.stringSetting(config.KeyDBBackupHost)
	d.Port = s.intSetting(config.KeyDBPort)
	d.BackupPort = s.intSetting(config.KeyDBBackupPort)
	d.Username = s.stringSetting(config.KeyDBUsername)
	d.Password = s.stringSetting(config.KeyDBPassword)
	d.ReplicaHost = s.stringSetting(config.KeyDBReplicaHost)
	d.ReplicaPort = s.intSetting(config.KeyDBReplicaPort)

	d.HostNames = append([]string{s.primaryHostname()}, s.backupHostnames()...)
	d.HostNames = append(d.HostNames, s.CDNHostnames()...)

	d.Database = s.settings.Get(config.KeyDBName).String()
	d.PreparedStatements = s.settings.Get(config.KeyDBPreparedStatements).Truthy()
	d.AdvisoryLocks = s.settings.Get(config.KeyDBAdvisoryLocks).Truthy()
	if s.settings.Get(config.KeyConnectionReaperAge).Present() {
		d.IdleTimeout = s.intSetting(config.KeyConnectionReaperAge)
	}
	if s.settings.Get(config.KeyConnectionReaperInterval).Present() {
		d.ReapingFrequency = s.intSetting(config.KeyConnectionReaperInterval)
	}

	d.Variables = s.databaseVariables(overrides)

	if mode := s.settings.Get(config.KeyDBSSLMode); mode.Present() {
		d.SSLMode = mode.String()
	}
	if sslModesWithCertificates[d.SSLMode] {
		d.SSLCert = s.existingPath("database certificate", postgresCertEnv, config.KeyDBSSLCert)
		d.SSLKey = s.existingPath("database key", postgresKeyEnv, config.KeyDBSSLKey)
		d.SSLRootCert = s.existingPath("database CA", postgresCAEnv, config.KeyDBSSLRootCert)
	}

	return d
}

// primaryHostname is the application hostname, or the database host when no
// application hostname is configured.
func (s *Synthesizer) primaryHostname() string {
	if v := s.settings.Get(config.KeyHostname); v.Present() {
		return v.String()
	}
	return s.settings.Get(config.KeyDBHost).String()
}

func (s *Synthesizer) backupHostnames() []string {
	if v := s.settings.Get(config.KeyBackupHostname); v.Present() {
		return []string{v.String()}
	}
	return nil
}

// databaseVariables collects db_variables_<name> provider settings keyed by <name>
// and applies overrides on top. It returns nil when there is nothing to set.
func (s *Synthesizer) databaseVariables(overrides map[string]any) map[string]any {
	var vars map[string]any
	for _, key := range s.settings.ProviderKeys() {
		name, ok := strings.CutPrefix(key, config.KeyDBVariablesPrefix)
		if !ok || name == "" {
			continue
		}
		if vars == nil {
			vars = make(map[string]any)
		}
		vars[name] = s.settings.Get(key).Interface()
	}

	for k, v := range overrides {
		if vars == nil {
			vars = make(map[string]any)
		}
		vars[k] = v
	}
	return vars
}
