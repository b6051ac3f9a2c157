package tlsconfig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSelfSigned writes a self-signed CA certificate that doubles as the leaf.
func writeSelfSigned(t *testing.T) Files {
	t.Helper()
	dir := t.TempDir()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "darkwatt-test"},
		DNSNames:              []string{"localhost"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))

	return Files{Cert: certPath, Key: keyPath, CA: certPath}
}

func TestServer(t *testing.T) {
	files := writeSelfSigned(t)

	cfg, err := files.Server()
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, cfg.ClientAuth)
	assert.Len(t, cfg.Certificates, 1)
	assert.NotNil(t, cfg.ClientCAs)
}

func TestClient(t *testing.T) {
	files := writeSelfSigned(t)

	cfg, err := files.Client("localhost")
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.ServerName)
	assert.NotNil(t, cfg.RootCAs)
}

func TestEnabled(t *testing.T) {
	assert.False(t, Files{}.Enabled())
	assert.True(t, Files{CA: "ca.pem"}.Enabled())
}

func TestIncomplete(t *testing.T) {
	_, err := Files{Cert: "cert.pem"}.Server()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestBadCA(t *testing.T) {
	files := writeSelfSigned(t)
	bad := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o600))
	files.CA = bad

	_, err := files.Client("")
	assert.ErrorContains(t, err, "failed to parse CA certificate")
}

func TestMissingKeyPair(t *testing.T) {
	_, err := Files{Cert: "nope.pem", Key: "nope.key", CA: "nope.ca"}.Server()
	assert.ErrorContains(t, err, "load key pair")
}
