// 包 areadao：行政区引擎句柄（快照持有、并发读写控制、重载）
package areadao

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"area-api/internal/areacode"
	"area-api/internal/logger"
	"area-api/internal/metrics"
	"area-api/internal/revgeo"
	"area-api/internal/source"
)

// State 生命周期状态
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	}
	return "uninitialized"
}

// 子索引名称，用于 ReloadError 与指标标签
const (
	IndexCode = "code"
	IndexGeo  = "geo"
)

// 文档注释：行政区引擎句柄（AreaDao）
// 背景：持有一份 (CodeIndex, GeoIndex) 快照；查询以共享模式持锁，仅覆盖查找本身；
// 初始化与重载在锁外读取数据源并构建新索引，随后以独占模式替换指针。
// 约束：wmu 串行化 Init/Reload/Close；mu 保护 state、code、geo、gen；返回值均为新分配的副本。
type DAO struct {
	wmu sync.Mutex

	mu    sync.RWMutex
	state State
	code  *areacode.Index
	geo   *revgeo.Index
	gen   uint64

	src  source.DataSource
	opts options
}

// New 创建未初始化的实例
func New(opts ...Option) *DAO {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &DAO{opts: o}
}

// Open 创建并初始化
func Open(ctx context.Context, src source.DataSource, opts ...Option) (*DAO, error) {
	d := New(opts...)
	if err := d.Init(ctx, src); err != nil {
		return nil, err
	}
	return d, nil
}

// 文档注释：从数据源加载两个子索引
// 背景：编码与地理记录并行读取（errgroup）；地理索引依赖编码索引过滤无法解析的参考点，故在编码树之后构建。
// 返回：失败时返回 *InitError，实例保持 Uninitialized；已就绪返回 ErrAlreadyInitialized；已关闭返回 ErrNotReady。
func (d *DAO) Init(ctx context.Context, src source.DataSource) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	switch d.State() {
	case StateReady:
		return ErrAlreadyInitialized
	case StateClosed:
		return ErrNotReady
	}
	if src == nil {
		return &InitError{Cause: errors.New("nil data source")}
	}
	start := time.Now()
	var (
		codeIdx *areacode.Index
		geoRecs []revgeo.Record
		geoVer  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		idx, err := loadCode(gctx, src)
		codeIdx = idx
		return err
	})
	g.Go(func() error {
		v, recs, err := loadGeo(gctx, src)
		geoVer, geoRecs = v, recs
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.ReloadsTotal.WithLabelValues("init", "error").Inc()
		logger.L().Error("area_init_failed", "source", src.Name(), "err", err)
		return &InitError{Cause: err}
	}
	geoIdx := d.buildGeo(geoRecs, geoVer, codeIdx)

	d.swap(func() {
		d.code, d.geo = codeIdx, geoIdx
		d.src = src
		d.state = StateReady
	})
	metrics.ReloadsTotal.WithLabelValues("init", "ok").Inc()
	metrics.ReloadDurationMs.WithLabelValues("init").Observe(float64(time.Since(start).Milliseconds()))
	logger.L().Info("area_init_done", "source", src.Name(), "codes", codeIdx.Len(), "points", geoIdx.Len(), "generation", d.Generation(), "ms", time.Since(start).Milliseconds())
	return nil
}

// 文档注释：重建编码索引
// 背景：在锁外读取与构建，成功后仅在独占锁内替换编码索引；地理索引保持不变，
// 其中不再可解析的参考点在查询期被过滤。
// 返回：失败返回 *ReloadError{Index: "code"}，原索引不受影响。
func (d *DAO) ReloadCode(ctx context.Context) error {
	return d.reload(ctx, IndexCode, func(src source.DataSource) (func(), int, error) {
		idx, err := loadCode(ctx, src)
		if err != nil {
			return nil, 0, err
		}
		return func() { d.code = idx }, idx.Len(), nil
	})
}

// 文档注释：重建地理索引
// 背景：以当前编码索引过滤参考点；与编码索引的交叉引用只在同一快照内成立。
func (d *DAO) ReloadGeo(ctx context.Context) error {
	return d.reload(ctx, IndexGeo, func(src source.DataSource) (func(), int, error) {
		v, recs, err := loadGeo(ctx, src)
		if err != nil {
			return nil, 0, err
		}
		d.mu.RLock()
		codeIdx := d.code
		d.mu.RUnlock()
		idx := d.buildGeo(recs, v, codeIdx)
		return func() { d.geo = idx }, idx.Len(), nil
	})
}

func (d *DAO) reload(ctx context.Context, index string, build func(source.DataSource) (install func(), size int, err error)) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	d.mu.RLock()
	state, src := d.state, d.src
	d.mu.RUnlock()
	if state != StateReady {
		return ErrNotReady
	}
	start := time.Now()
	install, size, err := build(src)
	if err != nil {
		metrics.ReloadsTotal.WithLabelValues(index, "error").Inc()
		logger.L().Error("area_reload_failed", "index", index, "source", src.Name(), "err", err)
		return &ReloadError{Index: index, Cause: err}
	}
	d.swap(install)
	metrics.ReloadsTotal.WithLabelValues(index, "ok").Inc()
	metrics.ReloadDurationMs.WithLabelValues(index).Observe(float64(time.Since(start).Milliseconds()))
	logger.L().Info("area_reload_done", "index", index, "size", size, "generation", d.Generation(), "ms", time.Since(start).Milliseconds())
	return nil
}

// swap 在独占锁内安装新快照并推进代数
func (d *DAO) swap(install func()) {
	t := time.Now()
	d.mu.Lock()
	install()
	d.gen++
	gen, codes, points := d.gen, d.code.Len(), d.geo.Len()
	d.mu.Unlock()
	metrics.SwapDurationUs.Observe(float64(time.Since(t).Microseconds()))
	metrics.Generation.Set(float64(gen))
	metrics.IndexSize.WithLabelValues(IndexCode).Set(float64(codes))
	metrics.IndexSize.WithLabelValues(IndexGeo).Set(float64(points))
}

// Close 释放两个子索引；幂等。默认同时关闭数据源
func (d *DAO) Close() error {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	d.mu.Lock()
	if d.state == StateClosed {
		d.mu.Unlock()
		return nil
	}
	src := d.src
	d.state = StateClosed
	d.code, d.geo, d.src = nil, nil, nil
	d.mu.Unlock()
	logger.L().Info("area_closed")
	if src != nil && d.opts.closeSource {
		return src.Close()
	}
	return nil
}

func loadCode(ctx context.Context, src source.DataSource) (*areacode.Index, error) {
	v, err := src.CodeVersion(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := src.CodeRecords(ctx)
	if err != nil {
		return nil, err
	}
	return areacode.Build(recs, v)
}

func loadGeo(ctx context.Context, src source.DataSource) (string, []revgeo.Record, error) {
	v, err := src.GeoVersion(ctx)
	if err != nil {
		return "", nil, err
	}
	recs, err := src.GeoRecords(ctx)
	if err != nil {
		return "", nil, err
	}
	return v, recs, nil
}

func (d *DAO) buildGeo(recs []revgeo.Record, version string, codeIdx *areacode.Index) *revgeo.Index {
	var accept func(string) bool
	if codeIdx != nil {
		accept = codeIdx.Has
	}
	idx, dropped := revgeo.Build(recs, version, accept, d.opts.geo)
	if dropped > 0 {
		logger.L().Warn("geo_points_dropped", "dropped", dropped, "kept", idx.Len())
	}
	return idx
}
