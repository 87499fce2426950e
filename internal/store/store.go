// 包 store：持久化索引（按数据源版本缓存的二进制索引文件）
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"area-api/internal/areacode"
	"area-api/internal/logger"
	"area-api/internal/metrics"
	"area-api/internal/revgeo"
	"area-api/internal/source"
)

const (
	CodeFile = "area_code.idx"
	GeoFile  = "area_geo.idx"

	// DefaultIndexSize 索引文件预算（字节），同时约束解压内存
	DefaultIndexSize int64 = 500_000_000
)

// 文档注释：持久化索引装饰器
// 背景：包装任意 DataSource；子索引的版本与磁盘文件一致时直接解码文件，跳过 CSV/SQL 解析；否则读底层数据源并原子重写文件。
// 约束：版本为空串时完全旁路；文件缺失、损坏或超出预算只会退回底层读取，不影响正确性。
type Persisted struct {
	inner  source.DataSource
	dir    string
	budget int64
}

// New 创建装饰器；budget<=0 使用 DefaultIndexSize
func New(inner source.DataSource, dir string, budget int64) (*Persisted, error) {
	if inner == nil {
		return nil, errors.New("store: nil data source")
	}
	if dir == "" {
		return nil, errors.New("store: empty index dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create index dir: %w", err)
	}
	if budget <= 0 {
		budget = DefaultIndexSize
	}
	return &Persisted{inner: inner, dir: dir, budget: budget}, nil
}

func (p *Persisted) Name() string { return "persisted(" + p.inner.Name() + ")" }

func (p *Persisted) Close() error { return p.inner.Close() }

func (p *Persisted) CodeVersion(ctx context.Context) (string, error) { return p.inner.CodeVersion(ctx) }

func (p *Persisted) GeoVersion(ctx context.Context) (string, error) { return p.inner.GeoVersion(ctx) }

// Dir 索引文件目录
func (p *Persisted) Dir() string { return p.dir }

func (p *Persisted) CodeRecords(ctx context.Context) ([]areacode.Record, error) {
	v, err := p.inner.CodeVersion(ctx)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(p.dir, CodeFile)
	if v != "" {
		if recs, err := ReadCode(path, v, p.budget); err == nil {
			metrics.PersistTotal.WithLabelValues("code", "hit").Inc()
			logger.L().Info("index_file_hit", "file", path, "version", v, "records", len(recs))
			return recs, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.L().Warn("index_file_ignored", "file", path, "err", err)
		}
		metrics.PersistTotal.WithLabelValues("code", "miss").Inc()
	}
	recs, err := p.inner.CodeRecords(ctx)
	if err != nil || v == "" {
		return recs, err
	}
	p.persist("code", path, func() error { return WriteCode(path, v, recs, p.budget) })
	return recs, nil
}

func (p *Persisted) GeoRecords(ctx context.Context) ([]revgeo.Record, error) {
	v, err := p.inner.GeoVersion(ctx)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(p.dir, GeoFile)
	if v != "" {
		if recs, err := ReadGeo(path, v, p.budget); err == nil {
			metrics.PersistTotal.WithLabelValues("geo", "hit").Inc()
			logger.L().Info("index_file_hit", "file", path, "version", v, "records", len(recs))
			return recs, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.L().Warn("index_file_ignored", "file", path, "err", err)
		}
		metrics.PersistTotal.WithLabelValues("geo", "miss").Inc()
	}
	recs, err := p.inner.GeoRecords(ctx)
	if err != nil || v == "" {
		return recs, err
	}
	p.persist("geo", path, func() error { return WriteGeo(path, v, recs, p.budget) })
	return recs, nil
}

// persist 写文件失败只记录日志，数据已在内存中可用
func (p *Persisted) persist(index, path string, write func() error) {
	err := write()
	switch {
	case err == nil:
		metrics.PersistTotal.WithLabelValues(index, "write").Inc()
		logger.L().Info("index_file_written", "file", path)
	case errors.Is(err, ErrOverBudget):
		metrics.PersistTotal.WithLabelValues(index, "skip").Inc()
		logger.L().Warn("index_file_skipped", "file", path, "err", err)
	default:
		logger.L().Warn("index_file_write_failed", "file", path, "err", err)
	}
}

// 文档注释：打开数据源，dir 非空时包装为持久化索引
// 背景：服务、命令行与预构建工具共用同一装配逻辑。
func OpenSource(ctx context.Context, p source.Params, dir string, budget int64) (source.DataSource, error) {
	src, err := source.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return src, nil
	}
	ps, err := New(src, dir, budget)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return ps, nil
}
