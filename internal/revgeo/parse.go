package revgeo

import (
	"fmt"
	"strconv"
	"strings"
)

// 文档注释：解析文本形式的中心点
// 约束：支持 "lng,lat" 与 "lng lat" 两种写法；空串返回零值与 false。
func ParseCenter(s string) (Point, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Point{}, false, nil
	}
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(f) != 2 {
		return Point{}, false, fmt.Errorf("center %q: want 2 numbers, got %d", s, len(f))
	}
	p, err := parseLonLat(f[0], f[1])
	if err != nil {
		return Point{}, false, fmt.Errorf("center %q: %w", s, err)
	}
	return p, true, nil
}

// 文档注释：解析文本形式的多边形
// 背景：环之间以 ';' 分隔，点之间以 ',' 分隔，点内 "lng lat" 以空白分隔；第一环为外环。
// 约束：少于 3 个点的环被忽略；外环无效时返回空多边形与 false。
func ParsePolygon(s string) (Polygon, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Polygon{}, false, nil
	}
	var poly Polygon
	for ri, ring := range strings.Split(s, ";") {
		var rr []Point
		for _, pair := range strings.Split(ring, ",") {
			f := strings.Fields(pair)
			if len(f) == 0 {
				continue
			}
			if len(f) != 2 {
				return Polygon{}, false, fmt.Errorf("polygon ring %d: bad point %q", ri, pair)
			}
			p, err := parseLonLat(f[0], f[1])
			if err != nil {
				return Polygon{}, false, fmt.Errorf("polygon ring %d: %w", ri, err)
			}
			rr = append(rr, p)
		}
		if len(rr) < 3 {
			if ri == 0 {
				return Polygon{}, false, nil
			}
			continue
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly, true, nil
}

// 文档注释：由中心点与多边形文本组装记录
// 背景：供 CSV/SQL 数据源共用；多个多边形以 '|' 分隔；两者皆缺失时返回 false，调用方跳过该行。
func ParseRecord(code, center, polygon string) (Record, bool, error) {
	r := Record{Code: strings.TrimSpace(code)}
	c, okC, err := ParseCenter(center)
	if err != nil {
		return Record{}, false, err
	}
	for _, part := range strings.Split(polygon, "|") {
		poly, ok, err := ParsePolygon(part)
		if err != nil {
			return Record{}, false, err
		}
		if ok {
			r.Polygons = append(r.Polygons, poly)
		}
	}
	okP := len(r.Polygons) > 0
	if okC {
		r.Center = c
	} else if okP {
		b := r.Polygons[0].BBox
		r.Center = Point{Lat: (b[1] + b[3]) / 2, Lon: (b[0] + b[2]) / 2}
	}
	return r, okC || okP, nil
}

// FormatCenter 中心点的文本形式 "lng,lat"
func FormatCenter(p Point) string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

// 文档注释：多边形的文本形式，与 ParseRecord 互逆
// 约束：多个多边形以 '|' 分隔，环以 ';' 分隔，点以 ',' 分隔，点内 "lng lat"。
func FormatPolygons(ps []Polygon) string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('|')
		}
		for j, ring := range p.Rings {
			if j > 0 {
				b.WriteByte(';')
			}
			for k, pt := range ring {
				if k > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.FormatFloat(pt.Lon, 'f', -1, 64))
				b.WriteByte(' ')
				b.WriteString(strconv.FormatFloat(pt.Lat, 'f', -1, 64))
			}
		}
	}
	return b.String()
}

func parseLonLat(lonS, latS string) (Point, error) {
	lon, err := strconv.ParseFloat(lonS, 64)
	if err != nil {
		return Point{}, err
	}
	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lon: lon}, nil
}
