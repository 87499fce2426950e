package revgeo

import (
	"math"
	"strings"
)

// 坐标系名称
const (
	CoordWGS84 = "WGS-84"
	CoordGCJ02 = "GCJ-02"
	CoordBD09  = "BD-09"
)

// 文档注释：坐标系转换（GCJ-02/BD-09 → WGS84）
// 背景：国内互联网地图坐标需转换以贴合参考点数据；空串或 WGS-84 原样返回。
// 约束：简化实现，误差在数十米级；未知坐标系返回 false。
func ToWGS84(lat, lon float64, coordSys string) (float64, float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(coordSys)) {
	case "", CoordWGS84, "WGS84":
		return lat, lon, true
	case CoordGCJ02, "GCJ02":
		lat, lon = gcj02ToWGS84(lat, lon)
		return lat, lon, true
	case CoordBD09, "BD09":
		lat, lon = bd09ToWGS84(lat, lon)
		return lat, lon, true
	}
	return lat, lon, false
}

func gcj02ToWGS84(lat, lon float64) (float64, float64) {
	glat, glon := transformGCJ(lat, lon)
	return lat*2 - glat, lon*2 - glon
}

func bd09ToWGS84(lat, lon float64) (float64, float64) {
	// BD-09 -> GCJ-02 -> WGS84
	x := lon - 0.0065
	y := lat - 0.006
	z := math.Sqrt(x*x+y*y) - 0.00002*math.Sin(y*math.Pi)
	theta := math.Atan2(y, x) - 0.000003*math.Cos(x*math.Pi)
	return gcj02ToWGS84(z*math.Sin(theta), z*math.Cos(theta))
}

func transformGCJ(lat, lon float64) (float64, float64) {
	if outOfChina(lat, lon) {
		return lat, lon
	}
	const a, ee = 6378245.0, 0.00669342162296594323
	dLat := transformLat(lon-105.0, lat-35.0)
	dLon := transformLon(lon-105.0, lat-35.0)
	radLat := lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - ee*magic*magic
	sqrtMagic := math.Sqrt(magic)
	dLat = (dLat * 180.0) / ((a * (1 - ee)) / (magic * sqrtMagic) * math.Pi)
	dLon = (dLon * 180.0) / (a / sqrtMagic * math.Cos(radLat) * math.Pi)
	return lat + dLat, lon + dLon
}

func outOfChina(lat, lon float64) bool {
	return lon < 72.004 || lon > 137.8347 || lat < 0.8293 || lat > 55.8271
}

func transformLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func transformLon(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}
