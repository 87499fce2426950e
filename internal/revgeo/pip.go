package revgeo

// 文档注释：点入多边形判定（Even-Odd）
// 背景：对最近邻候选执行精确命中判定；支持洞与多面结构。
// 约束：射线算法在边界临界值时易受数值误差影响，边界上的点可能判为任一侧。
func (p Polygon) Contains(pt Point) bool {
	if len(p.Rings) == 0 || !inBBox(pt, p.BBox) {
		return false
	}
	if !pointInRing(pt, p.Rings[0]) {
		return false
	}
	for i := 1; i < len(p.Rings); i++ {
		if pointInRing(pt, p.Rings[i]) {
			return false
		}
	}
	return true
}

func (r *Record) contains(pt Point) bool {
	for _, p := range r.Polygons {
		if p.Contains(pt) {
			return true
		}
	}
	return false
}

// 射线法判定点是否在环内
func pointInRing(pt Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func inBBox(pt Point, b [4]float64) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			b[0] = min(b[0], pt.Lon)
			b[1] = min(b[1], pt.Lat)
			b[2] = max(b[2], pt.Lon)
			b[3] = max(b[3], pt.Lat)
		}
	}
	return b
}
