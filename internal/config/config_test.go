package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"area-api/internal/source"
	"area-api/internal/store"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"AREA_SOURCE", "AREA_CODE_CSV", "AREA_GEO_CSV", "AREA_INDEX_DIR", "AREA_INDEX_SIZE",
		"AREA_GEO_MAX_KM", "AREA_RELOAD_HOUR", "ADDR", "API_BASE", "CORS_ALLOWED_ORIGINS", "GEO_CACHE_TTL_S",
		"RATE_LIMIT_QPS", "RATE_LIMIT_BURST", "TLS_ENABLE"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, source.KindCSV, c.Source.Kind)
	assert.Equal(t, "data/area/area_code.csv", c.Source.CodePath)
	assert.Empty(t, c.IndexDir)
	assert.Equal(t, store.DefaultIndexSize, c.IndexSize)
	assert.Zero(t, c.GeoMaxKm)
	assert.Equal(t, -1, c.ReloadHour)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "/api", c.APIBase)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, time.Hour, c.GeoCacheTTL)
	assert.Equal(t, 200.0, c.RateLimitQPS)
	assert.Equal(t, 200, c.RateLimitBurst)
	assert.False(t, c.TLSEnable)
}

func TestOverrides(t *testing.T) {
	t.Setenv("AREA_SOURCE", "SQLite")
	t.Setenv("AREA_SQLITE_PATH", "/tmp/area.db")
	t.Setenv("AREA_GZIP", "true")
	t.Setenv("AREA_INDEX_DIR", "/var/lib/area")
	t.Setenv("AREA_GEO_MAX_KM", "80.5")
	t.Setenv("AREA_RELOAD_HOUR", "4")
	t.Setenv("API_BASE", "/v2/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("GEO_CACHE_TTL_S", "60")
	t.Setenv("RATE_LIMIT_QPS", "50")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("AREA_WATCH", "not-a-bool")

	c := FromEnv()
	assert.Equal(t, source.KindSQLite, c.Source.Kind)
	assert.Equal(t, "/tmp/area.db", c.Source.SQLitePath)
	assert.True(t, c.Source.Gzip)
	assert.Equal(t, "/var/lib/area", c.IndexDir)
	assert.Equal(t, 80.5, c.GeoMaxKm)
	assert.Equal(t, 4, c.ReloadHour)
	assert.Equal(t, "/v2", c.APIBase)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, time.Minute, c.GeoCacheTTL)
	assert.Equal(t, 50.0, c.RateLimitQPS)
	assert.Equal(t, 5, c.RateLimitBurst)
	assert.False(t, c.Watch, "unparsable bool falls back")
}
