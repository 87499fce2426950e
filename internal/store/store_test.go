package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"area-api/internal/areacode"
	"area-api/internal/revgeo"
	"area-api/internal/source"
)

type countingSource struct {
	codeVer, geoVer string
	codeReads       int
	geoReads        int
	closed          bool
	fail            error
}

func (s *countingSource) Name() string { return "counting" }
func (s *countingSource) Close() error { s.closed = true; return nil }
func (s *countingSource) CodeVersion(context.Context) (string, error) {
	return s.codeVer, nil
}
func (s *countingSource) GeoVersion(context.Context) (string, error) { return s.geoVer, nil }
func (s *countingSource) CodeRecords(context.Context) ([]areacode.Record, error) {
	s.codeReads++
	if s.fail != nil {
		return nil, s.fail
	}
	return testCodes, nil
}
func (s *countingSource) GeoRecords(context.Context) ([]revgeo.Record, error) {
	s.geoReads++
	return testGeo, nil
}

var _ source.DataSource = (*Persisted)(nil)

func TestPersistedReusesFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inner := &countingSource{codeVer: "c1", geoVer: "g1"}
	p, err := New(inner, dir, 0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		codes, err := p.CodeRecords(ctx)
		require.NoError(t, err)
		assert.Equal(t, testCodes, codes)
		geo, err := p.GeoRecords(ctx)
		require.NoError(t, err)
		assert.Equal(t, testGeo, geo)
	}
	assert.Equal(t, 1, inner.codeReads)
	assert.Equal(t, 1, inner.geoReads)
	assert.FileExists(t, filepath.Join(dir, CodeFile))
	assert.FileExists(t, filepath.Join(dir, GeoFile))

	inner.codeVer = "c2"
	_, err = p.CodeRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.codeReads, "version change rebuilds from source")
	_, err = p.CodeRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.codeReads)

	require.NoError(t, p.Close())
	assert.True(t, inner.closed)
}

func TestPersistedBypassAndFallback(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inner := &countingSource{}
	p, err := New(inner, dir, 0)
	require.NoError(t, err)

	_, err = p.CodeRecords(ctx)
	require.NoError(t, err)
	_, err = p.CodeRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.codeReads, "unknown version never cached")
	assert.NoFileExists(t, filepath.Join(dir, CodeFile))

	inner.codeVer = "c1"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CodeFile), []byte("garbage"), 0o644))
	codes, err := p.CodeRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, testCodes, codes, "damaged file falls back to source")
	assert.Equal(t, 3, inner.codeReads)

	inner.codeVer = "c2"
	inner.fail = errors.New("boom")
	_, err = p.CodeRecords(ctx)
	assert.ErrorIs(t, err, inner.fail)
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, t.TempDir(), 0)
	assert.Error(t, err)
	_, err = New(&countingSource{}, "", 0)
	assert.Error(t, err)

	p, err := New(&countingSource{}, filepath.Join(t.TempDir(), "a", "b"), 0)
	require.NoError(t, err)
	assert.DirExists(t, p.Dir())
	assert.Equal(t, "persisted(counting)", p.Name())
}
