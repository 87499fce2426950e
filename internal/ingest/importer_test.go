package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"area-api/internal/source"
)

const importCodeCSV = `code,name,keyword,enname,hide
44,广东省,粤,guangdong,0
4401,旧名,,,0
4401,广州市,穗 羊城,guangzhou,0
4499,直辖,,,1
`

const importGeoCSV = `code,center,polygon
4401,"113.26,23.13","113 23,114 23,114 24,113 24|115 22,116 22,116 23"
44,"113.27,23.13",
`

func TestImportIntoSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	codePath := filepath.Join(dir, "code.csv")
	geoPath := filepath.Join(dir, "geo.csv")
	require.NoError(t, os.WriteFile(codePath, []byte(importCodeCSV), 0o644))
	require.NoError(t, os.WriteFile(geoPath, []byte(importGeoCSV), 0o644))
	csvSrc, err := source.NewCSV(codePath, geoPath, false)
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "area.db")
	db, err := source.OpenSQLite(dbPath)
	require.NoError(t, err)
	st, err := Import(ctx, db, source.KindSQLite, csvSrc)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Codes, "duplicate code keeps the last row")
	assert.Equal(t, 2, st.Geo)

	// 再次导入覆盖而非追加
	st2, err := Import(ctx, db, source.KindSQLite, csvSrc)
	require.NoError(t, err)
	assert.Equal(t, st, st2)
	require.NoError(t, db.Close())

	sqlSrc, err := source.Open(ctx, source.Params{Kind: source.KindSQLite, SQLitePath: dbPath})
	require.NoError(t, err)
	defer sqlSrc.Close()

	cv, err := sqlSrc.CodeVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, st.CodeVersion, cv)
	gv, err := sqlSrc.GeoVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, st.GeoVersion, gv)

	codes, err := sqlSrc.CodeRecords(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 3)
	assert.Equal(t, "广州市", codes[1].Name)
	assert.Equal(t, "穗 羊城", codes[1].Keyword)
	assert.True(t, codes[2].Hidden)

	want, err := csvSrc.GeoRecords(ctx)
	require.NoError(t, err)
	got, err := sqlSrc.GeoRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[1], got[0])
	assert.Equal(t, want[0], got[1])
}
