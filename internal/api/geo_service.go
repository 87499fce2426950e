package api

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"area-api/internal/areadao"
	"area-api/internal/logger"
	"area-api/internal/metrics"
	"area-api/internal/revgeo"
)

// 文档注释：反地理查询服务（带两级缓存）
// 背景：热点坐标在短周期内重复查询；进程内 LRU 以 geohash 为键，Redis（可选）以六位小数坐标为键，
// 两者都带快照代数，重载后旧条目自然失效。
// 约束：缓存值视为只读，调用方不得修改返回的 Path。
type GeoService struct {
	e   Engine
	lru *revgeo.LRU[areadao.GeoResult]
	rc  *redis.Client
	ttl time.Duration
}

// NewGeoService rc 可为 nil；ttl<=0 时使用 1 小时
func NewGeoService(e Engine, rc *redis.Client, size int, ttl time.Duration) *GeoService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GeoService{e: e, lru: revgeo.NewLRU[areadao.GeoResult](size, ttl), rc: rc, ttl: ttl}
}

// Query 先查缓存，未命中时查询引擎并回填；返回值 cached 标记是否命中缓存
func (s *GeoService) Query(ctx context.Context, lat, lng float64, coordSys string) (areadao.GeoResult, bool, error) {
	gen := s.e.Generation()
	sys := strings.ToUpper(strings.TrimSpace(coordSys))
	lkey := cacheKey(gen, sys, revgeo.Geohash(lat, lng, 12))
	if res, ok := s.lru.Get(lkey); ok {
		metrics.GeoCacheTotal.WithLabelValues("lru", "hit").Inc()
		return res, true, nil
	}
	metrics.GeoCacheTotal.WithLabelValues("lru", "miss").Inc()
	rkey := "area:geo:" + cacheKey(gen, sys, formatCoord(lat)+":"+formatCoord(lng))
	if s.rc != nil {
		if b, err := s.rc.Get(ctx, rkey).Bytes(); err == nil {
			var res areadao.GeoResult
			if json.Unmarshal(b, &res) == nil {
				metrics.GeoCacheTotal.WithLabelValues("redis", "hit").Inc()
				s.lru.Set(lkey, res)
				return res, true, nil
			}
		} else if err != redis.Nil {
			logger.L().Debug("geo_cache_redis_error", "err", err)
		}
		metrics.GeoCacheTotal.WithLabelValues("redis", "miss").Inc()
	}
	res, err := s.e.Locate(lat, lng, coordSys)
	if err != nil {
		return res, false, err
	}
	// NOTE: 以实际命中的快照代数写缓存，查询期间发生重载时不会把新结果挂到旧代数下。
	if res.Generation == gen {
		s.lru.Set(lkey, res)
		if s.rc != nil {
			if b, err := json.Marshal(res); err == nil {
				_ = s.rc.Set(ctx, rkey, b, s.ttl).Err()
			}
		}
	}
	return res, false, nil
}

func cacheKey(gen uint64, sys, pos string) string {
	return strconv.FormatUint(gen, 10) + ":" + sys + ":" + pos
}

func formatCoord(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
