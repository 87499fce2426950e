package revgeo

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// 文档注释：从 GeoJSON FeatureCollection/Feature 读取参考点与边界
// 背景：支持 Natural Earth/geoBoundaries 等导出的边界数据；properties.code 为行政区编码。
// 约束：几何仅支持 Point/Polygon/MultiPolygon；properties 中的 center "lng,lat" 优先作为中心点。
func ParseGeoJSON(r io.Reader) ([]Record, error) {
	var gj map[string]any
	if err := json.NewDecoder(r).Decode(&gj); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	var out []Record
	switch strings.ToLower(getStr(gj, "type")) {
	case "featurecollection":
		arr, _ := gj["features"].([]any)
		for _, it := range arr {
			if f, ok := it.(map[string]any); ok {
				if rec, ok := featureRecord(f); ok {
					out = append(out, rec)
				}
			}
		}
	case "feature":
		if rec, ok := featureRecord(gj); ok {
			out = append(out, rec)
		}
	default:
		return nil, fmt.Errorf("unsupported geojson type %q", getStr(gj, "type"))
	}
	return out, nil
}

func featureRecord(f map[string]any) (Record, bool) {
	var rec Record
	if p, ok := f["properties"].(map[string]any); ok {
		rec.Code = strings.TrimSpace(getStr(p, "code"))
		if c, ok, _ := ParseCenter(getStr(p, "center")); ok {
			rec.Center = c
		}
	}
	if rec.Code == "" {
		return Record{}, false
	}
	if g, ok := f["geometry"].(map[string]any); ok {
		addGeometry(&rec, g)
	}
	if rec.Center == (Point{}) && len(rec.Polygons) > 0 {
		b := rec.Polygons[0].BBox
		rec.Center = Point{Lat: (b[1] + b[3]) / 2, Lon: (b[0] + b[2]) / 2}
	}
	return rec, rec.Center != (Point{})
}

func addGeometry(rec *Record, g map[string]any) {
	coords, _ := g["coordinates"].([]any)
	switch strings.ToLower(getStr(g, "type")) {
	case "point":
		if len(coords) >= 2 && rec.Center == (Point{}) {
			rec.Center = Point{Lat: toFloat(coords[1]), Lon: toFloat(coords[0])}
		}
	case "polygon":
		rec.Polygons = append(rec.Polygons, polygonFrom(coords))
	case "multipolygon":
		for _, part := range coords {
			if rings, ok := part.([]any); ok {
				rec.Polygons = append(rec.Polygons, polygonFrom(rings))
			}
		}
	}
}

func polygonFrom(rings []any) Polygon {
	var poly Polygon
	for _, ring := range rings {
		arr, ok := ring.([]any)
		if !ok {
			continue
		}
		var rr []Point
		for _, p := range arr {
			if vv, ok := p.([]any); ok && len(vv) >= 2 {
				rr = append(rr, Point{Lat: toFloat(vv[1]), Lon: toFloat(vv[0])})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}
