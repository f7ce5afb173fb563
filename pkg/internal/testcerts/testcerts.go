// Package testcerts generates throwaway certificates for TLS tests. Files are
// written to t.TempDir and removed when the test ends.
package testcerts

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

// Password protects the PKCS#12 archives of a Bundle.
const Password = "pw"

// Bundle holds a CA and a leaf certificate signed by it, valid for localhost,
// 127.0.0.1 and ::1 as both server and client.
type Bundle struct {
	// CAFile is a PEM file with the CA certificate, usable as trust store.
	CAFile string
	// KeyStoreFile is a PEM file with the leaf certificate followed by its
	// private key, usable as key store.
	KeyStoreFile string
	// KeyStoreP12File holds the leaf certificate, its key and the CA in a
	// PKCS#12 archive protected by Password.
	KeyStoreP12File string
	// TrustStoreP12File is a PKCS#12 trust store with the CA, protected by
	// Password.
	TrustStoreP12File string

	Leaf     tls.Certificate
	CertPool *x509.CertPool
}

// Generate creates a new Bundle.
func Generate(t testing.TB) *Bundle {
	t.Helper()
	dir := t.TempDir()

	caKey := newKey(t)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"restclient test CA"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("testcerts: create CA: %v", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatalf("testcerts: parse CA: %v", err)
	}

	leafKey := newKey(t)
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, caCert, &leafKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("testcerts: create leaf: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(leafKey)
	if err != nil {
		t.Fatalf("testcerts: marshal key: %v", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leafDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	leaf, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("testcerts: key pair: %v", err)
	}

	leafCert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		t.Fatalf("testcerts: parse leaf: %v", err)
	}
	keyStore, err := pkcs12.Modern.Encode(leafKey, leafCert, []*x509.Certificate{caCert}, Password)
	if err != nil {
		t.Fatalf("testcerts: encode key store: %v", err)
	}
	trustStore, err := pkcs12.Modern.EncodeTrustStore([]*x509.Certificate{caCert}, Password)
	if err != nil {
		t.Fatalf("testcerts: encode trust store: %v", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	return &Bundle{
		CAFile:            WriteFile(t, dir, "ca.pem", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER})),
		KeyStoreFile:      WriteFile(t, dir, "keystore.pem", append(certPEM, keyPEM...)),
		KeyStoreP12File:   WriteFile(t, dir, "keystore.p12", keyStore),
		TrustStoreP12File: WriteFile(t, dir, "truststore.p12", trustStore),
		Leaf:              leaf,
		CertPool:          pool,
	}
}

// WriteFile writes content to dir/name and returns its path.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("testcerts: write %s: %v", name, err)
	}
	return path
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("testcerts: generate key: %v", err)
	}
	return key
}
