package api

import (
	"context"

	"area-api/internal/areacode"
	"area-api/internal/areadao"
)

// 文档注释：HTTP 层依赖的引擎能力
// 背景：路由只依赖查询与重载接口，便于测试替换；*areadao.DAO 满足该接口。
type Engine interface {
	Children(code string) ([]areacode.Item, error)
	Find(code string) ([]areacode.Item, error)
	Search(query string, limit int) ([]areacode.SearchResult, error)
	Related(code string) ([][]areacode.RelatedItem, error)
	Locate(lat, lng float64, coordSys string) (areadao.GeoResult, error)
	ReloadCode(ctx context.Context) error
	ReloadGeo(ctx context.Context) error
	Generation() uint64
	Stats() areadao.Stats
}

// 文档注释：错误返回结构（对外）
// 约束：Code 为稳定的机器可读取值（bad_request / not_found / not_ready / internal）。
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// geoResponse 反地理返回：命中路径与缓存标记
type geoResponse struct {
	areadao.GeoResult
	Cached bool `json:"cached"`
}

type reloadResponse struct {
	Index      string `json:"index"`
	Generation uint64 `json:"generation"`
}
