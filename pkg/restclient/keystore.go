package restclient

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

var errNoCertificates = errors.New("no certificates found")

// loadTrustStore returns a pool with every certificate of the PEM bundle or
// PKCS#12 archive at store.Path.
//
// PKCS#12 trust stores are read as Java trust stores first. Archives holding a
// private key are accepted too, in which case the leaf and its chain are
// trusted.
func loadTrustStore(store Store) (*x509.CertPool, error) {
	data, err := os.ReadFile(store.Path)
	if err != nil {
		return nil, err
	}

	var certs []*x509.Certificate
	if isPEM(data) {
		certs, err = pemCertificates(data)
	} else {
		certs, err = decodeTrustArchive(data, store.Password)
	}
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, errNoCertificates
	}

	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return pool, nil
}

// loadKeyStore returns the client certificate held in the PKCS#12 archive or
// PEM file at store.Path.
func loadKeyStore(store Store) (tls.Certificate, error) {
	data, err := os.ReadFile(store.Path)
	if err != nil {
		return tls.Certificate{}, err
	}

	if isPEM(data) {
		return pemKeyPair(data)
	}

	key, leaf, chain, err := pkcs12.DecodeChain(data, store.Password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decoding PKCS#12: %w", err)
	}

	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, ca := range chain {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}
	return cert, nil
}

func decodeTrustArchive(data []byte, password string) ([]*x509.Certificate, error) {
	certs, err := pkcs12.DecodeTrustStore(data, password)
	if err == nil {
		return certs, nil
	}

	_, leaf, chain, chainErr := pkcs12.DecodeChain(data, password)
	if chainErr != nil {
		return nil, fmt.Errorf("decoding PKCS#12: %w", err)
	}
	return append([]*x509.Certificate{leaf}, chain...), nil
}

func isPEM(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("-----BEGIN"))
}

func pemCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return certs, nil
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
}

// pemKeyPair splits a PEM file into its certificate and private key blocks.
func pemKeyPair(data []byte) (tls.Certificate, error) {
	var certPEM, keyPEM []byte
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		switch {
		case block.Type == "CERTIFICATE":
			certPEM = append(certPEM, pem.EncodeToMemory(block)...)
		case bytes.HasSuffix([]byte(block.Type), []byte("PRIVATE KEY")):
			keyPEM = append(keyPEM, pem.EncodeToMemory(block)...)
		}
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}
