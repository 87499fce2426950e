package utils

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "area.internal", "10.0.0.5"))

	raw, err := os.ReadFile(cert)
	require.NoError(t, err)
	block, _ := pem.Decode(raw)
	require.NotNil(t, block)
	c, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "area.internal", c.Subject.CommonName)
	assert.Contains(t, c.DNSNames, "area.internal")
	assert.NoError(t, c.VerifyHostname("10.0.0.5"))
	assert.FileExists(t, key)

	// 已存在时不覆盖
	require.NoError(t, EnsureSelfSignedCert(cert, key))
	again, err := os.ReadFile(cert)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_DSN", "")
	t.Setenv("PG_USER", "area")
	t.Setenv("PG_PASSWORD", "pw")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")
	assert.Equal(t, "postgres://area:pw@db:5432/area?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_DSN", "postgres://x@y/z")
	assert.Equal(t, "postgres://x@y/z", BuildPostgresDSNFromEnv())
}

func TestOpenRedisFromEnv(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "")
	assert.Nil(t, OpenRedisFromEnv())

	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	rc := OpenRedisFromEnv()
	require.NotNil(t, rc)
	defer rc.Close()
	assert.Equal(t, "cache:6380", rc.Options().Addr)
	assert.Equal(t, 2, rc.Options().DB)
}
