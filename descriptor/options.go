package descriptor

import (
	"os"
	"time"
)

// Option customizes a Synthesizer.
type Option func(*Synthesizer)

// WithFS replaces the filesystem used to probe and read certificate material.
func WithFS(fsys FS) Option {
	return func(s *Synthesizer) { s.fs = fsys }
}

// WithCopier replaces the privileged copier used when a certificate file is not
// readable by this process. A nil copier disables the fallback.
func WithCopier(c Copier) Option {
	return func(s *Synthesizer) { s.copier = c }
}

// WithLookupEnv replaces the environment lookup used for certificate paths.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *Synthesizer) { s.lookupEnv = fn }
}

// WithTestMode makes cache descriptors select the test namespace.
func WithTestMode(enabled bool) Option {
	return func(s *Synthesizer) { s.testMode = enabled }
}

// WithFailoverDriver declares whether the cache driver can fail over to a
// replica. Replica metadata is attached only when it can.
func WithFailoverDriver(available bool) Option {
	return func(s *Synthesizer) { s.failover = available }
}

// WithTempDir sets where temporary certificate copies are written.
func WithTempDir(dir string) Option {
	return func(s *Synthesizer) { s.tempDir = dir }
}

// WithClock replaces the clock used to name temporary copies.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

func defaultSynthesizer() *Synthesizer {
	return &Synthesizer{
		fs:        OSFS{},
		copier:    NewSudoCopier(),
		lookupEnv: os.LookupEnv,
		failover:  true,
		tempDir:   os.TempDir(),
		now:       time.Now,
	}
}
