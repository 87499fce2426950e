package revgeo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLon, minLat, maxLon, maxLat float64) Polygon {
	return Polygon{Rings: [][]Point{{
		{Lat: minLat, Lon: minLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: maxLat, Lon: minLon},
	}}}
}

func TestLocateNearest(t *testing.T) {
	x, dropped := Build([]Record{
		{Code: "4401", Center: Point{Lat: 23.13, Lon: 113.26}},
		{Code: "4414", Center: Point{Lat: 23.11, Lon: 114.41}},
	}, "v1", nil, Options{})
	assert.Zero(t, dropped)
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, "v1", x.Version())

	hit, err := x.Locate(23.0, 114.3, nil)
	require.NoError(t, err)
	assert.Equal(t, "4414", hit.Code)
	assert.False(t, hit.Contained)
	assert.Greater(t, hit.DistanceKm, 0.0)
}

func TestLocatePrefersContainingPolygon(t *testing.T) {
	x, _ := Build([]Record{
		{Code: "big", Center: Point{Lat: 22.1, Lon: 113.1}, Polygons: []Polygon{square(113, 22, 115, 24)}},
		{Code: "near", Center: Point{Lat: 23.5, Lon: 115.5}},
	}, "", nil, Options{})

	hit, err := x.Locate(23.5, 114.9, nil)
	require.NoError(t, err)
	assert.Equal(t, "big", hit.Code)
	assert.True(t, hit.Contained)

	hit, err = x.Locate(23.5, 115.4, nil)
	require.NoError(t, err)
	assert.Equal(t, "near", hit.Code)
}

func TestLocatePolygonHole(t *testing.T) {
	p := square(0, 0, 10, 10)
	p.Rings = append(p.Rings, square(4, 4, 6, 6).Rings[0])
	p.BBox = computeBBox(p)
	assert.True(t, p.Contains(Point{Lat: 2, Lon: 2}))
	assert.False(t, p.Contains(Point{Lat: 5, Lon: 5}))
	assert.False(t, p.Contains(Point{Lat: 20, Lon: 20}))
}

func TestLocateErrors(t *testing.T) {
	empty, _ := Build(nil, "", nil, Options{})
	_, err := empty.Locate(23, 113, nil)
	assert.ErrorIs(t, err, ErrNoPoints)

	var nilIdx *Index
	_, err = nilIdx.Locate(23, 113, nil)
	assert.ErrorIs(t, err, ErrNoPoints)

	x, _ := Build([]Record{{Code: "44", Center: Point{Lat: 23, Lon: 113}}}, "", nil, Options{MaxDistanceKm: 50})
	for _, pt := range [][2]float64{{91, 0}, {0, 181}, {math.NaN(), 0}} {
		_, err = x.Locate(pt[0], pt[1], nil)
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	}
	_, err = x.Locate(40, 100, nil)
	assert.ErrorIs(t, err, ErrTooFar)
	_, err = x.Locate(23.1, 113.1, nil)
	assert.NoError(t, err)

	_, err = x.Locate(23, 113, func(string) bool { return false })
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestBuildFiltersAndCopies(t *testing.T) {
	poly := square(113, 22, 115, 24)
	in := []Record{
		{Code: "ok", Center: Point{Lat: 23, Lon: 113}},
		{Code: "", Center: Point{Lat: 23, Lon: 113}},
		{Code: "bad", Center: Point{Lat: 123, Lon: 113}},
		{Code: "rejected", Center: Point{Lat: 23, Lon: 114}},
		{Code: "poly", Polygons: []Polygon{poly}},
	}
	x, dropped := Build(in, "", func(code string) bool { return code != "rejected" }, Options{})
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, [4]float64{}, in[4].Polygons[0].BBox, "input left untouched")

	hit, err := x.Locate(23, 114, nil)
	require.NoError(t, err)
	assert.Equal(t, "poly", hit.Code)
	assert.True(t, hit.Contained)
}
