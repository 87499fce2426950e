package areadao

import (
	"time"

	"area-api/internal/areacode"
	"area-api/internal/metrics"
	"area-api/internal/revgeo"
)

// Stats 当前快照概况
type Stats struct {
	State       string `json:"state"`
	Generation  uint64 `json:"generation"`
	Codes       int    `json:"codes"`
	Points      int    `json:"points"`
	CodeVersion string `json:"code_version"`
	GeoVersion  string `json:"geo_version"`
	Source      string `json:"source"`
}

// GeoResult 反地理命中：路径与命中细节
type GeoResult struct {
	Path       []areacode.Item `json:"path"`
	Code       string          `json:"code"`
	DistanceKm float64         `json:"distance_km"`
	Contained  bool            `json:"contained"`
	Generation uint64          `json:"generation"`
}

// State 当前生命周期状态
func (d *DAO) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Generation 快照代数；每次成功的 Init/Reload 加一
func (d *DAO) Generation() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.gen
}

func (d *DAO) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Stats{State: d.state.String(), Generation: d.gen}
	if d.code != nil {
		s.Codes, s.CodeVersion = d.code.Len(), d.code.Version()
	}
	if d.geo != nil {
		s.Points, s.GeoVersion = d.geo.Len(), d.geo.Version()
	}
	if d.src != nil {
		s.Source = d.src.Name()
	}
	return s
}

// read 以共享模式执行一次查找，并记录耗时与结果
func (d *DAO) read(op string, fn func(code *areacode.Index, geo *revgeo.Index) error) error {
	start := time.Now()
	d.mu.RLock()
	var err error
	if d.state != StateReady {
		err = ErrNotReady
	} else {
		err = translateError(fn(d.code, d.geo))
	}
	d.mu.RUnlock()
	metrics.QueryDurationUs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()))
	metrics.QueriesTotal.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case err == ErrNotReady:
		return "not_ready"
	}
	return "not_found"
}

// Children 下级区域；code 为空串时返回顶级区域
func (d *DAO) Children(code string) ([]areacode.Item, error) {
	var out []areacode.Item
	err := d.read("children", func(c *areacode.Index, _ *revgeo.Index) (err error) {
		out, err = c.Children(code)
		return err
	})
	return out, err
}

// Find 自顶向下的完整路径
func (d *DAO) Find(code string) ([]areacode.Item, error) {
	var out []areacode.Item
	err := d.read("find", func(c *areacode.Index, _ *revgeo.Index) (err error) {
		out, err = c.Find(code)
		return err
	})
	return out, err
}

// Search 模糊检索；无命中返回空切片（非错误）；limit<=0 取默认值
func (d *DAO) Search(query string, limit int) ([]areacode.SearchResult, error) {
	var out []areacode.SearchResult
	err := d.read("search", func(c *areacode.Index, _ *revgeo.Index) error {
		out = c.Search(query, limit)
		return nil
	})
	return out, err
}

// Related 路径上每一级的同级列表
func (d *DAO) Related(code string) ([][]areacode.RelatedItem, error) {
	var out [][]areacode.RelatedItem
	err := d.read("related", func(c *areacode.Index, _ *revgeo.Index) (err error) {
		out, err = c.Related(code)
		return err
	})
	return out, err
}

// GeoSearch WGS-84 坐标 → 所在或最近区域的完整路径
func (d *DAO) GeoSearch(lat, lng float64) ([]areacode.Item, error) {
	res, err := d.Locate(lat, lng, revgeo.CoordWGS84)
	if err != nil {
		return nil, err
	}
	return res.Path, nil
}

// 文档注释：反地理查询（带坐标系）
// 背景：coordSys 支持 wgs84（默认）、gcj02、bd09，先转换为 WGS-84；编码解析与定位在同一共享锁内完成，结果只引用同一快照。
// 返回：未知坐标系或坐标越界返回包装 revgeo.ErrInvalidCoordinate 的 ErrNotFound。
func (d *DAO) Locate(lat, lng float64, coordSys string) (GeoResult, error) {
	var res GeoResult
	err := d.read("geo", func(c *areacode.Index, g *revgeo.Index) error {
		wlat, wlng, ok := revgeo.ToWGS84(lat, lng, coordSys)
		if !ok {
			return revgeo.ErrInvalidCoordinate
		}
		hit, err := g.Locate(wlat, wlng, c.Has)
		if err != nil {
			return err
		}
		p, err := c.Find(hit.Code)
		if err != nil {
			return err
		}
		res = GeoResult{Path: p, Code: hit.Code, DistanceKm: hit.DistanceKm, Contained: hit.Contained, Generation: d.gen}
		return nil
	})
	return res, err
}
