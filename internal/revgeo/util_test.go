package revgeo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGeohash(t *testing.T) {
	assert.Equal(t, "u4pruydqqvj", Geohash(57.64911, 10.40744, 11))
	assert.Equal(t, "u4pru", Geohash(57.64911, 10.40744, 5))
	assert.NotEqual(t, Geohash(23.13, 113.26, 12), Geohash(23.13, 113.2601, 12))
}

func TestLRU(t *testing.T) {
	c := NewLRU[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	c.Set("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](0, time.Millisecond)
	c.Set("k", "v")
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestToWGS84(t *testing.T) {
	lat, lon, ok := ToWGS84(23.13, 113.26, "")
	assert.True(t, ok)
	assert.Equal(t, 23.13, lat)
	assert.Equal(t, 113.26, lon)

	_, _, ok = ToWGS84(23.13, 113.26, "utm")
	assert.False(t, ok)

	// GCJ-02 正向偏移后再逆转换，应回到原坐标附近
	glat, glon := transformGCJ(39.9, 116.4)
	assert.NotEqual(t, 39.9, glat)
	lat, lon, ok = ToWGS84(glat, glon, "gcj02")
	assert.True(t, ok)
	assert.InDelta(t, 39.9, lat, 2e-4)
	assert.InDelta(t, 116.4, lon, 2e-4)

	lat, lon, ok = ToWGS84(48.85, 2.35, CoordGCJ02)
	assert.True(t, ok)
	assert.Equal(t, 48.85, lat, "outside China unchanged")
	assert.Equal(t, 2.35, lon)

	lat, lon, ok = ToWGS84(39.91, 116.41, "bd-09")
	assert.True(t, ok)
	assert.InDelta(t, 39.91, lat, 0.02)
	assert.InDelta(t, 116.41, lon, 0.02)
}
