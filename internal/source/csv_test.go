package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"area-api/internal/areacode"
)

const codeCSV = `code,name,keyword,enname,hide
44,广东省,粤,guangdong,0
4401,广州市,"穗 羊城",guangzhou,
4499,直辖,,,1
,空行,,,
`

const geoCSV = `code,center,polygon
4401,"113.26,23.13",
4414,,"114 23,115 23,115 24,114 24"
4415,,
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func writeGzip(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestCSVRecords(t *testing.T) {
	dir := t.TempDir()
	src, err := NewCSV(writeFile(t, dir, "code.csv", codeCSV), writeFile(t, dir, "geo.csv", geoCSV), false)
	require.NoError(t, err)
	ctx := context.Background()

	codes, err := src.CodeRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []areacode.Record{
		{Code: "44", Name: "广东省", Keyword: "粤", EnName: "guangdong"},
		{Code: "4401", Name: "广州市", Keyword: "穗 羊城", EnName: "guangzhou"},
		{Code: "4499", Name: "直辖", Hidden: true},
	}, codes)

	geo, err := src.GeoRecords(ctx)
	require.NoError(t, err)
	require.Len(t, geo, 2, "row without center or polygon skipped")
	assert.Equal(t, "4401", geo[0].Code)
	assert.Equal(t, 23.13, geo[0].Center.Lat)
	assert.Equal(t, "4414", geo[1].Code)
	assert.Equal(t, 23.5, geo[1].Center.Lat)
	assert.Len(t, geo[1].Polygons, 1)
}

func TestCSVVersion(t *testing.T) {
	dir := t.TempDir()
	codePath := writeFile(t, dir, "code.csv", codeCSV)
	src, err := NewCSV(codePath, "", false)
	require.NoError(t, err)
	ctx := context.Background()

	v1, err := src.CodeVersion(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, v1)
	again, _ := src.CodeVersion(ctx)
	assert.Equal(t, v1, again)

	writeFile(t, dir, "code.csv", codeCSV+"45,广西壮族自治区,桂,guangxi,0\n")
	v2, err := src.CodeVersion(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	gv, err := src.GeoVersion(ctx)
	require.NoError(t, err)
	assert.Empty(t, gv)
	geo, err := src.GeoRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, geo)
}

func TestCSVGzipAndGeoJSON(t *testing.T) {
	dir := t.TempDir()
	gj := `{"type":"Feature","properties":{"code":"4401"},"geometry":{"type":"Point","coordinates":[113.26,23.13]}}`
	src, err := NewCSV(writeGzip(t, dir, "code.csv.gz", codeCSV), writeGzip(t, dir, "geo.geojson.gz", gj), true)
	require.NoError(t, err)

	codes, err := src.CodeRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, codes, 3)

	geo, err := src.GeoRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, geo, 1)
	assert.Equal(t, "4401", geo[0].Code)

	notGz, err := NewCSV(writeFile(t, dir, "plain.csv", codeCSV), "", true)
	require.NoError(t, err)
	_, err = notGz.CodeRecords(context.Background())
	assert.Error(t, err)
}

func TestCSVErrors(t *testing.T) {
	_, err := NewCSV("", "", false)
	assert.Error(t, err)
	_, err = NewCSV(filepath.Join(t.TempDir(), "missing.csv"), "", false)
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	src, err := NewCSV(writeFile(t, dir, "code.csv", codeCSV), writeFile(t, dir, "geo.csv", "code,center\n44,abc\n"), false)
	require.NoError(t, err)
	_, err = src.GeoRecords(context.Background())
	assert.Error(t, err)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), Params{Kind: "mongo"})
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	dir := t.TempDir()
	src, err := Open(context.Background(), Params{Kind: "CSV", CodePath: writeFile(t, dir, "code.csv", codeCSV)})
	require.NoError(t, err)
	assert.Contains(t, src.Name(), "code.csv")
	assert.NoError(t, src.Close())
}
