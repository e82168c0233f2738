// Package tlsconfig builds the server's TLS identity from a PKCS#8 private key and a DER
// certificate, the same pair of files the original server takes as positional CLI arguments.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Load reads the private key and certificate from disk and builds a server-side tls.Config with
// no client authentication, mirroring rustls::ServerConfig::builder().with_no_client_auth().
func Load(privateKeyPath, certificatePath string) (*tls.Config, error) {
	keyDER, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: read private key: %w", err)
	}
	certDER, err := os.ReadFile(certificatePath)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: read certificate: %w", err)
	}

	key, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: parse PKCS8 private key: %w", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: parse certificate: %w", err)
	}

	tlsCert := tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}

	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		ClientAuth:   tls.NoClientCert,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
