// 包 revgeo：反地理索引（坐标 → 最近/所在行政区）
package revgeo

import (
	"math"
	"strings"
)

// DefaultCandidates 多边形判定时检查的最近邻候选数
const DefaultCandidates = 8

// Options 构建参数
type Options struct {
	// MaxDistanceKm 最近点距离上限，0 表示不限制（默认行为）
	MaxDistanceKm float64
	// Candidates 多边形判定的候选数，<=0 使用 DefaultCandidates
	Candidates int
}

// 文档注释：反地理索引（GeoIndex）
// 背景：KD-Tree 组织参考点，按距离取前 k 个候选，优先返回多边形包含查询点的候选，否则返回最近点。
// 约束：构建后只读；可被多个读者并发查询。
type Index struct {
	kd      *kdNode
	points  int
	version string
	opts    Options
}

// 文档注释：构建反地理索引
// 背景：accept 用于过滤无法在同一快照编码树中解析的参考点（为 nil 时全部接受）。
// 约束：缺失中心点时取多边形包围盒中心；坐标非法的记录被丢弃。返回索引与被丢弃的记录数。
func Build(records []Record, version string, accept func(code string) bool, opts Options) (*Index, int) {
	if opts.Candidates <= 0 {
		opts.Candidates = DefaultCandidates
	}
	kept := make([]*Record, 0, len(records))
	dropped := 0
	for i := range records {
		r := records[i]
		r.Code = strings.TrimSpace(r.Code)
		r.Polygons = append([]Polygon(nil), r.Polygons...)
		for j := range r.Polygons {
			r.Polygons[j].BBox = computeBBox(r.Polygons[j])
		}
		if r.Center == (Point{}) && len(r.Polygons) > 0 {
			b := r.Polygons[0].BBox
			r.Center = Point{Lat: (b[1] + b[3]) / 2, Lon: (b[0] + b[2]) / 2}
		}
		if r.Code == "" || !validPoint(r.Center) || (accept != nil && !accept(r.Code)) {
			dropped++
			continue
		}
		kept = append(kept, &r)
	}
	return &Index{kd: buildKD(kept, 0), points: len(kept), version: version, opts: opts}, dropped
}

// Len 参考点数量
func (x *Index) Len() int { return x.points }

// Version 数据源版本
func (x *Index) Version() string { return x.version }

// 文档注释：按坐标查找所在或最近的行政区
// 背景：accept 在查询期再次过滤编码，确保结果只引用当前快照中可解析的节点。
// 返回：空索引 ErrNoPoints；超出距离上限 ErrTooFar；坐标非法 ErrInvalidCoordinate。
func (x *Index) Locate(lat, lon float64, accept func(code string) bool) (Hit, error) {
	pt := Point{Lat: lat, Lon: lon}
	if !validPoint(pt) {
		return Hit{}, ErrInvalidCoordinate
	}
	if x == nil || x.kd == nil {
		return Hit{}, ErrNoPoints
	}
	cands := nearestK(x.kd, pt, x.opts.Candidates, accept)
	if len(cands) == 0 {
		return Hit{}, ErrNoPoints
	}
	for _, c := range cands {
		if c.r.contains(pt) {
			return Hit{Code: c.r.Code, DistanceKm: c.d, Contained: true}, nil
		}
	}
	best := cands[0]
	if x.opts.MaxDistanceKm > 0 && best.d > x.opts.MaxDistanceKm {
		return Hit{}, ErrTooFar
	}
	return Hit{Code: best.r.Code, DistanceKm: best.d}, nil
}

func validPoint(p Point) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
