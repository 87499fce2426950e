package revgeo

// 文档注释：行政区参考点与几何的最小数据结构
// 背景：每个参考点对应编码树中的一个节点；几何可选，仅用于命中判定，最近邻只依赖中心点。
// 约束：多边形以环列表表达，第一环为外环，其余为洞；坐标为 WGS84。
type Record struct {
	Code     string
	Center   Point
	Polygons []Polygon
}

// Polygon：按 GeoJSON 约定的环集合，第一环是外环，其后为洞
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// 点坐标（WGS84）
type Point struct {
	Lat float64
	Lon float64
}

// Hit：一次反查的命中结果
type Hit struct {
	Code       string
	DistanceKm float64
	Contained  bool // 坐标落在该区域多边形内
}
