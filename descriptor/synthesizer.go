// Package descriptor synthesizes connection descriptors for the relational
// database and the coordination cache from resolved settings, the process
// environment and certificate files on disk.
//
// Synthesis never fails. Settings that cannot be used are omitted and a
// warning is logged; the consumer of the descriptor surfaces the resulting
// connection error.
package descriptor

import (
	"net/url"
	"strings"
	"time"

	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/logger"
)

// SettingsSource is the read side of config.Settings the synthesizer needs.
type SettingsSource interface {
	Get(key string) config.Value
	ProviderKeys() []string
}

// Synthesizer builds descriptors. It keeps no state between calls; every
// descriptor is built fresh and owned by the caller.
type Synthesizer struct {
	settings  SettingsSource
	log       logger.Logger
	fs        FS
	copier    Copier
	lookupEnv func(string) (string, bool)
	testMode  bool
	failover  bool
	tempDir   string
	now       func() time.Time
}

// NewSynthesizer returns a Synthesizer reading from settings.
func NewSynthesizer(settings SettingsSource, log logger.Logger, opts ...Option) *Synthesizer {
	s := defaultSynthesizer()
	s.settings = settings
	s.log = log
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.Named("descriptor")
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = OSFS{}
	}
	return s
}

// CDNHostnames returns the hostnames served through the CDN: the host of
// cdn_url and cdn_origin_hostname, in that order, when configured.
func (s *Synthesizer) CDNHostnames() []string {
	var hosts []string
	if v := s.settings.Get(config.KeyCDNURL); v.Present() {
		if u, err := url.Parse(strings.TrimSpace(v.String())); err == nil && u.Hostname() != "" {
			hosts = append(hosts, u.Hostname())
		} else {
			s.log.Warn().Str("key", config.KeyCDNURL).Msg("Ignoring CDN URL without a hostname")
		}
	}
	if v := s.settings.Get(config.KeyCDNOriginHostname); v.Present() {
		hosts = append(hosts, v.String())
	}
	return hosts
}

// stringSetting returns a present setting as a string, or "".
func (s *Synthesizer) stringSetting(key string) string {
	v := s.settings.Get(key)
	if !v.Present() {
		return ""
	}
	return v.String()
}

// intSetting returns a present numeric setting. A value that is not an integer
// is dropped with a warning and reads as 0, which leaves the field unset.
func (s *Synthesizer) intSetting(key string) int {
	v := s.settings.Get(key)
	if !v.Present() {
		return 0
	}
	n, ok := v.Int()
	if !ok {
		s.log.Warn().Str("key", key).Str("value", v.String()).Msg("Setting is not an integer, field dropped from descriptor")
		return 0
	}
	return int(n)
}

// configuredPath resolves a file path from the first set environment variable in
// envNames, falling back to the settingKey setting.
func (s *Synthesizer) configuredPath(envNames []string, settingKey string) string {
	for _, name := range envNames {
		if v, ok := s.lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if settingKey == "" {
		return ""
	}
	return s.stringSetting(settingKey)
}

// existingPath returns the configured path only if the file exists.
func (s *Synthesizer) existingPath(label string, envNames []string, settingKey string) string {
	path := s.configuredPath(envNames, settingKey)
	if path == "" {
		return ""
	}
	if !exists(s.fs, path) {
		s.log.Warn().Str("file", label).Str("path", path).Msg("Configured TLS file does not exist, omitting it")
		return ""
	}
	return path
}
