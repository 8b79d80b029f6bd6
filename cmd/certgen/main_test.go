package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	ip := net.ParseIP("10.0.0.7")

	certPEM, keyPEM, err := generate([]net.IP{ip}, now, 48*time.Hour)
	require.NoError(t, err)

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)

	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	require.Len(t, cert.IPAddresses, 1)
	assert.True(t, cert.IPAddresses[0].Equal(ip))
	assert.Equal(t, now.Add(48*time.Hour).UTC(), cert.NotAfter.UTC())
	assert.Contains(t, cert.ExtKeyUsage, x509.ExtKeyUsageServerAuth)
}
