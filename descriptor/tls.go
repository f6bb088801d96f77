package descriptor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gaborage/go-settings/config"
)

// tempCopyPrefix names privileged copies: <prefix>-<pid>-<unixnano>.<ext>.
const tempCopyPrefix = "redis-client"

// TLSParams carries client TLS material for the coordination cache.
type TLSParams struct {
	// Certificate is the parsed leaf client certificate.
	Certificate *x509.Certificate `json:"-"`
	// KeyPair is the certificate chain and private key ready for tls.Config.
	KeyPair *tls.Certificate `json:"-"`
	// Subject is the leaf certificate subject, for diagnostics.
	Subject    string `json:"client_certificate,omitempty"`
	CAFile     string `json:"ca_file,omitempty"`
	VerifyPeer bool   `json:"verify_peer"`
}

// HasClientCertificate reports whether client certificate material was loaded.
func (p *TLSParams) HasClientCertificate() bool {
	return p != nil && p.KeyPair != nil
}

// cacheTLS resolves and loads the cache TLS material. Any failure degrades to
// a descriptor without a client certificate.
func (s *Synthesizer) cacheTLS(ctx context.Context) *TLSParams {
	params := &TLSParams{VerifyPeer: true}

	certPath := s.existingPath("cache certificate", redisCertEnv, config.KeyRedisSSLCert)
	keyPath := s.existingPath("cache key", redisKeyEnv, config.KeyRedisSSLKey)
	params.CAFile = s.existingPath("cache CA", redisCAEnv, config.KeyRedisSSLCA)

	switch {
	case certPath != "" && keyPath != "":
		if err := s.loadClientCertificate(ctx, params, certPath, keyPath); err != nil {
			s.log.Warn().Err(err).Msg("Cache TLS certificates not loaded, connecting without a client certificate")
		}
	case certPath != "" || keyPath != "":
		s.log.Warn().Msg("Cache TLS needs both a certificate and a key, connecting without a client certificate")
	}

	if !params.HasClientCertificate() && params.CAFile == "" {
		return nil
	}
	return params
}

func (s *Synthesizer) loadClientCertificate(ctx context.Context, params *TLSParams, certPath, keyPath string) error {
	certPEM, err := s.readMaterial(ctx, certPath, "crt", 0o644)
	if err != nil {
		return err
	}
	keyPEM, err := s.readMaterial(ctx, keyPath, "key", 0o600)
	if err != nil {
		return err
	}

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return fmt.Errorf("parse client key pair %s: %w", certPath, err)
	}
	leaf, err := parseLeaf(certPEM)
	if err != nil {
		return fmt.Errorf("parse client certificate %s: %w", certPath, err)
	}
	pair.Leaf = leaf

	params.KeyPair = &pair
	params.Certificate = leaf
	params.Subject = leaf.Subject.String()
	return nil
}

func parseLeaf(certPEM []byte) (*x509.Certificate, error) {
	for rest := certPEM; len(rest) > 0; {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			return x509.ParseCertificate(block.Bytes)
		}
	}
	return nil, errors.New("no CERTIFICATE block found")
}

// readMaterial reads path. When the process lacks permission it copies the file
// with the privileged copier into a process-and-time scoped temporary file,
// reads the copy and removes it on every path out.
func (s *Synthesizer) readMaterial(ctx context.Context, path, ext string, mode fs.FileMode) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrPermission) || s.copier == nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tmp := filepath.Join(s.tempDir, fmt.Sprintf("%s-%d-%d.%s", tempCopyPrefix, os.Getpid(), s.now().UnixNano(), ext))
	defer func() {
		if rmErr := s.fs.Remove(tmp); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.Warn().Err(rmErr).Str("path", tmp).Msg("Failed to remove temporary certificate copy")
		}
	}()

	s.log.Debug().Str("path", path).Msg("Certificate file not readable, retrying through a privileged copy")
	if copyErr := s.copier.CopyPrivileged(ctx, path, tmp, mode); copyErr != nil {
		return nil, fmt.Errorf("read %s: %w (privileged copy: %v)", path, err, copyErr)
	}
	data, err = s.fs.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("read privileged copy of %s: %w", path, err)
	}
	return data, nil
}
