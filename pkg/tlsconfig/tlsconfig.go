// Package tlsconfig builds mutual-TLS configurations from PEM files.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// ErrIncomplete is returned when only some of the files are configured.
var ErrIncomplete = errors.New("tls requires cert, key and ca")

// Files locates a certificate, its key and the CA that signs peers.
type Files struct {
	Cert string
	Key  string
	CA   string
}

// Enabled reports whether any file is set. Callers run in plaintext otherwise.
func (f Files) Enabled() bool {
	return f.Cert != "" || f.Key != "" || f.CA != ""
}

// Server returns a config that requires and verifies client certificates.
func (f Files) Server() (*tls.Config, error) {
	cert, pool, err := f.load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Client returns a config presenting the certificate and trusting only the CA.
// serverName may be empty to use the dialed host.
func (f Files) Client(serverName string) (*tls.Config, error) {
	cert, pool, err := f.load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ServerName:   serverName,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func (f Files) load() (tls.Certificate, *x509.CertPool, error) {
	if f.Cert == "" || f.Key == "" || f.CA == "" {
		return tls.Certificate{}, nil, ErrIncomplete
	}

	cert, err := tls.LoadX509KeyPair(f.Cert, f.Key)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("load key pair: %w", err)
	}

	caCert, err := os.ReadFile(f.CA)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("read CA cert: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return tls.Certificate{}, nil, fmt.Errorf("failed to parse CA certificate %s", f.CA)
	}
	return cert, pool, nil
}
