package areadao

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"area-api/internal/areacode"
	"area-api/internal/revgeo"
)

// memSource 内存数据源，字段可在测试中替换
type memSource struct {
	mu      sync.Mutex
	codes   []areacode.Record
	geo     []revgeo.Record
	codeVer string
	geoVer  string
	codeErr error
	geoErr  error
	closed  int
}

func (s *memSource) Name() string { return "mem" }

func (s *memSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *memSource) CodeVersion(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codeVer, nil
}

func (s *memSource) GeoVersion(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geoVer, nil
}

func (s *memSource) CodeRecords(context.Context) ([]areacode.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes, s.codeErr
}

func (s *memSource) GeoRecords(context.Context) ([]revgeo.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geo, s.geoErr
}

func (s *memSource) set(fn func(s *memSource)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

var (
	codesA = []areacode.Record{
		{Code: "44", Name: "广东省", EnName: "guangdong"},
		{Code: "4401", Name: "广州市", Keyword: "穗", EnName: "guangzhou"},
		{Code: "440106", Name: "天河区", EnName: "tianhe"},
		{Code: "4414", Name: "惠州市", EnName: "huizhou"},
	}
	geoA = []revgeo.Record{
		{Code: "440106", Center: revgeo.Point{Lat: 23.12, Lon: 113.36}},
		{Code: "4414", Center: revgeo.Point{Lat: 23.11, Lon: 114.41}},
		{Code: "9999", Center: revgeo.Point{Lat: 23.12, Lon: 113.37}},
	}
	codesB = []areacode.Record{
		{Code: "45", Name: "广西壮族自治区", EnName: "guangxi"},
		{Code: "4501", Name: "南宁市", EnName: "nanning"},
	}
	geoB = []revgeo.Record{
		{Code: "4501", Center: revgeo.Point{Lat: 22.82, Lon: 108.37}},
	}
)

func newSourceA() *memSource {
	return &memSource{codes: codesA, geo: geoA, codeVer: "a", geoVer: "a"}
}

func pathCodes(items []areacode.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Code)
	}
	return out
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	d := New()
	assert.Equal(t, StateUninitialized, d.State())
	_, err := d.Children("")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, d.ReloadCode(ctx), ErrNotReady)

	src := newSourceA()
	require.NoError(t, d.Init(ctx, src))
	assert.Equal(t, StateReady, d.State())
	assert.Equal(t, uint64(1), d.Generation())
	assert.ErrorIs(t, d.Init(ctx, src), ErrAlreadyInitialized)

	st := d.Stats()
	assert.Equal(t, Stats{State: "ready", Generation: 1, Codes: 4, Points: 2, CodeVersion: "a", GeoVersion: "a", Source: "mem"}, st)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Equal(t, StateClosed, d.State())
	assert.Equal(t, 1, src.closed)
	_, err = d.Find("44")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, d.Init(ctx, src), ErrNotReady)
	assert.ErrorIs(t, d.ReloadGeo(ctx), ErrNotReady)
}

func TestCloseKeepsSourceWhenAsked(t *testing.T) {
	src := newSourceA()
	d, err := Open(context.Background(), src, WithCloseSource(false))
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.Zero(t, src.closed)
}

func TestInitFailure(t *testing.T) {
	ctx := context.Background()
	orphan := &memSource{codes: []areacode.Record{{Code: "440106", Name: "天河区"}}}
	d := New()
	err := d.Init(ctx, orphan)
	var ie *InitError
	require.ErrorAs(t, err, &ie)
	var oe *areacode.ErrOrphanCode
	assert.ErrorAs(t, err, &oe)
	assert.Equal(t, StateUninitialized, d.State())

	boom := errors.New("geo backend down")
	src := newSourceA()
	src.geoErr = boom
	err = d.Init(ctx, src)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUninitialized, d.State())

	src.geoErr = nil
	require.NoError(t, d.Init(ctx, src), "retry after failure")

	assert.Error(t, New().Init(ctx, nil))
}

func TestQueries(t *testing.T) {
	d, err := Open(context.Background(), newSourceA())
	require.NoError(t, err)
	defer d.Close()

	top, err := d.Children("")
	require.NoError(t, err)
	assert.Equal(t, []string{"44"}, pathCodes(top))

	p, err := d.Find("440106")
	require.NoError(t, err)
	assert.Equal(t, []string{"44", "4401", "440106"}, pathCodes(p))

	_, err = d.Find("4402")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, areacode.ErrNotFound)

	rs, err := d.Search("穗", 0)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, []string{"44", "4401"}, pathCodes(rs[0].Path))

	rs, err = d.Search("nowhere", 5)
	require.NoError(t, err)
	assert.Empty(t, rs)

	rel, err := d.Related("440106")
	require.NoError(t, err)
	assert.Len(t, rel, 3)
}

func TestLocate(t *testing.T) {
	d, err := Open(context.Background(), newSourceA())
	require.NoError(t, err)
	defer d.Close()

	// 9999 在编码树中不存在，虽最近但被过滤
	res, err := d.Locate(23.12, 113.37, "")
	require.NoError(t, err)
	assert.Equal(t, "440106", res.Code)
	assert.Equal(t, []string{"44", "4401", "440106"}, pathCodes(res.Path))
	assert.Equal(t, uint64(1), res.Generation)

	p, err := d.GeoSearch(23.0, 114.3)
	require.NoError(t, err)
	assert.Equal(t, []string{"44", "4414"}, pathCodes(p))

	_, err = d.Locate(23.12, 113.37, "utm")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, revgeo.ErrInvalidCoordinate)

	_, err = d.GeoSearch(95, 0)
	assert.ErrorIs(t, err, revgeo.ErrInvalidCoordinate)
}

func TestLocateMaxDistanceAndEmptyGeo(t *testing.T) {
	ctx := context.Background()
	d, err := Open(ctx, newSourceA(), WithMaxDistanceKm(50))
	require.NoError(t, err)
	_, err = d.GeoSearch(39.9, 116.4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, revgeo.ErrTooFar)
	d.Close()

	src := newSourceA()
	src.geo = nil
	d, err = Open(ctx, src)
	require.NoError(t, err)
	defer d.Close()
	_, err = d.GeoSearch(23.12, 113.36)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, revgeo.ErrNoPoints)
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	src := newSourceA()
	d, err := Open(ctx, src)
	require.NoError(t, err)
	defer d.Close()

	src.set(func(s *memSource) { s.codeErr = errors.New("disk gone") })
	err = d.ReloadCode(ctx)
	var re *ReloadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, IndexCode, re.Index)
	assert.Equal(t, uint64(1), d.Generation(), "failed reload keeps snapshot")
	_, err = d.Find("440106")
	assert.NoError(t, err)

	src.set(func(s *memSource) { s.codeErr, s.codes, s.codeVer = nil, codesB, "b" })
	require.NoError(t, d.ReloadCode(ctx))
	assert.Equal(t, uint64(2), d.Generation())
	_, err = d.Find("440106")
	assert.ErrorIs(t, err, ErrNotFound)

	// 地理索引仍是旧数据，其参考点在新编码树中都不可解析
	_, err = d.GeoSearch(23.12, 113.36)
	assert.ErrorIs(t, err, revgeo.ErrNoPoints)

	src.set(func(s *memSource) { s.geo, s.geoVer = geoB, "b" })
	require.NoError(t, d.ReloadGeo(ctx))
	assert.Equal(t, uint64(3), d.Generation())
	res, err := d.Locate(23.12, 113.36, "")
	require.NoError(t, err)
	assert.Equal(t, "4501", res.Code)
	assert.Equal(t, uint64(3), res.Generation)

	st := d.Stats()
	assert.Equal(t, "b", st.CodeVersion)
	assert.Equal(t, "b", st.GeoVersion)

	src.set(func(s *memSource) { s.geoErr = errors.New("bad geo") })
	err = d.ReloadGeo(ctx)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, IndexGeo, re.Index)
	assert.Equal(t, uint64(3), d.Generation())
}

func TestReloadIdempotent(t *testing.T) {
	ctx := context.Background()
	d, err := Open(ctx, newSourceA())
	require.NoError(t, err)
	defer d.Close()

	before, _ := d.Related("440106")
	require.NoError(t, d.ReloadCode(ctx))
	require.NoError(t, d.ReloadGeo(ctx))
	after, _ := d.Related("440106")
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(3), d.Generation())
}

// 并发读者在重载期间只能看到完整快照：定位结果总能在同一快照内解析
func TestConcurrentReadsDuringReload(t *testing.T) {
	ctx := context.Background()
	src := newSourceA()
	d, err := Open(ctx, src)
	require.NoError(t, err)
	defer d.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				res, err := d.Locate(23.0, 113.0, "")
				if err != nil {
					assert.ErrorIs(t, err, ErrNotFound)
					continue
				}
				if assert.NotEmpty(t, res.Path) {
					assert.Equal(t, res.Code, res.Path[len(res.Path)-1].Code)
				}
				top, err := d.Children("")
				if assert.NoError(t, err) {
					assert.Len(t, top, 1)
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			src.set(func(s *memSource) { s.codes, s.geo = codesB, geoB })
		} else {
			src.set(func(s *memSource) { s.codes, s.geo = codesA, geoA })
		}
		require.NoError(t, d.ReloadCode(ctx))
		require.NoError(t, d.ReloadGeo(ctx))
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, uint64(101), d.Generation())
}
