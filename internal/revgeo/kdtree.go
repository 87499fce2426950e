package revgeo

import "math"

const earthRadiusKm = 6371.0

// 文档注释：KD-Tree 近邻（二维经纬）
// 背景：按经度优先、纬度交替分割；支持取前 k 个可接受点，供多边形命中判定按距离依次检查。
// 约束：距离为球面距离（千米）；剪枝使用到分割线的球面下界，经度轴在高纬度同样成立。
type kdNode struct {
	r  *Record
	ax int // 0:lon,1:lat
	l  *kdNode
	r2 *kdNode
}

func buildKD(rs []*Record, depth int) *kdNode {
	if len(rs) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(rs) / 2
	selectNth(rs, mid, ax)
	n := &kdNode{r: rs[mid], ax: ax}
	n.l = buildKD(rs[:mid], depth+1)
	n.r2 = buildKD(rs[mid+1:], depth+1)
	return n
}

// 原地 nth 元素选择（轴为经度/纬度）
func selectNth(a []*Record, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []*Record, lo, hi, pivot, ax int) int {
	pv := axisValue(a[pivot].Center, ax)
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if axisValue(a[j].Center, ax) < pv {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func axisValue(p Point, ax int) float64 {
	if ax == 0 {
		return p.Lon
	}
	return p.Lat
}

type candidate struct {
	r *Record
	d float64
}

// 文档注释：取距离最近的 k 个可接受点（按距离升序）
// 约束：accept 为 nil 时接受全部；距离相同按编码升序，保证结果稳定。
func nearestK(root *kdNode, pt Point, k int, accept func(string) bool) []candidate {
	best := make([]candidate, 0, k+1)
	worst := func() float64 {
		if len(best) < k {
			return math.MaxFloat64
		}
		return best[len(best)-1].d
	}
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if accept == nil || accept(n.r.Code) {
			d := haversine(pt.Lat, pt.Lon, n.r.Center.Lat, n.r.Center.Lon)
			if d < worst() || (d == worst() && len(best) > 0 && n.r.Code < best[len(best)-1].r.Code) {
				best = insertCandidate(best, candidate{r: n.r, d: d}, k)
			}
		}
		key, q := axisValue(pt, n.ax), axisValue(n.r.Center, n.ax)
		first, second := n.l, n.r2
		if key >= q {
			first, second = n.r2, n.l
		}
		dfs(first)
		if planeDistance(pt, n.ax, q) <= worst() {
			dfs(second)
		}
	}
	dfs(root)
	return best
}

func insertCandidate(best []candidate, c candidate, k int) []candidate {
	i := len(best)
	for i > 0 && (best[i-1].d > c.d || (best[i-1].d == c.d && best[i-1].r.Code > c.r.Code)) {
		i--
	}
	best = append(best, candidate{})
	copy(best[i+1:], best[i:])
	best[i] = c
	if len(best) > k {
		best = best[:k]
	}
	return best
}

// 查询点到分割线另一侧的球面距离下界
// 经度轴的另一侧由分割经线与 180° 经线围成，取两者的较小值
func planeDistance(pt Point, ax int, q float64) float64 {
	if ax == 1 {
		return math.Abs(pt.Lat-q) * math.Pi / 180 * earthRadiusKm
	}
	return math.Min(meridianDistance(pt, q), meridianDistance(pt, 180))
}

func meridianDistance(pt Point, lon float64) float64 {
	dLon := math.Abs(pt.Lon-lon) * math.Pi / 180
	if dLon > math.Pi {
		dLon = 2*math.Pi - dLon
	}
	if dLon >= math.Pi/2 {
		return 0
	}
	return earthRadiusKm * math.Asin(math.Sin(dLon)*math.Cos(pt.Lat*math.Pi/180))
}

// 球面距离（Haversine），返回千米
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
