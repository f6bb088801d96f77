package descriptor

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/logger"
)

func newSettings(t *testing.T, values map[string]string) *config.Settings {
	t.Helper()
	defaults, err := config.LoadDefaults()
	require.NoError(t, err)
	return config.NewSettings(config.NewFileProviderFromMap(values), defaults)
}

func envFrom(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// newTestSynthesizer builds a synthesizer with an empty environment, no copier
// and a captured debug log.
func newTestSynthesizer(t *testing.T, values map[string]string, opts ...Option) (*Synthesizer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	base := []Option{WithLookupEnv(envFrom(nil)), WithCopier(nil), WithTempDir(t.TempDir())}
	s := NewSynthesizer(newSettings(t, values), logger.NewWithWriter("debug", &buf), append(base, opts...)...)
	return s, &buf
}

// writeKeyPair writes a self-signed client certificate and its key into dir.
func writeKeyPair(t *testing.T, dir, commonName string) (certPath, keyPath string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	certPath = filepath.Join(dir, "client.crt")
	keyPath = filepath.Join(dir, "client.key")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certPath, keyPath
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// deniedFS is the host filesystem except that reading the listed paths fails
// with a permission error, like a root-owned key file.
type deniedFS struct {
	OSFS
	denied map[string]error
}

func denyReads(paths ...string) *deniedFS {
	d := &deniedFS{denied: make(map[string]error)}
	for _, p := range paths {
		d.denied[p] = fs.ErrPermission
	}
	return d
}

func (d *deniedFS) ReadFile(name string) ([]byte, error) {
	if err, ok := d.denied[name]; ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return d.OSFS.ReadFile(name)
}

// recordingCopier copies with plain file IO and records every destination.
type recordingCopier struct {
	mu    sync.Mutex
	dsts  []string
	modes []fs.FileMode

	// write replaces the copied content when set.
	write func(src string) ([]byte, error)
	// fail is returned after the destination was written.
	fail error
}

func (c *recordingCopier) CopyPrivileged(_ context.Context, src, dst string, mode fs.FileMode) error {
	c.mu.Lock()
	c.dsts = append(c.dsts, dst)
	c.modes = append(c.modes, mode)
	c.mu.Unlock()

	read := os.ReadFile
	if c.write != nil {
		read = c.write
	}
	data, err := read(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, mode); err != nil {
		return fmt.Errorf("write copy: %w", err)
	}
	return c.fail
}

func (c *recordingCopier) destinations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.dsts...)
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
