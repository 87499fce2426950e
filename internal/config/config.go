// 包 config：从环境变量（可选 .env）汇总服务配置
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"area-api/internal/source"
	"area-api/internal/store"
)

// Config 服务配置
type Config struct {
	Source source.Params

	// IndexDir 非空时启用持久化索引
	IndexDir  string
	IndexSize int64
	// GeoMaxKm 反地理最近点距离上限，0 不限制
	GeoMaxKm float64
	// Watch 监听 CSV 数据文件变更并自动重载
	Watch bool
	// ReloadHour 每日定时重载的整点（Asia/Shanghai），<0 关闭
	ReloadHour int

	Addr           string
	APIBase        string
	AdminToken     string
	AdminAllow     string
	RealIPHeader   string
	AllowedOrigins []string

	GeoCacheTTL  time.Duration
	GeoCacheSize int

	RateLimitEnabled bool
	RateLimitQPS     float64
	RateLimitBurst   int

	TLSEnable   bool
	TLSCertPath string
	TLSKeyPath  string
}

// 文档注释：加载 .env 后读取环境变量
// 背景：与部署脚本约定 .env 与 data/env/.env 两处位置；已存在的环境变量优先。
func Load() *Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	return FromEnv()
}

// FromEnv 仅读取当前环境变量
func FromEnv() *Config {
	c := &Config{
		Source: source.Params{
			Kind:        source.Kind(strings.ToLower(getEnv("AREA_SOURCE", string(source.KindCSV)))),
			CodePath:    getEnv("AREA_CODE_CSV", filepath.Join("data", "area", "area_code.csv")),
			GeoPath:     os.Getenv("AREA_GEO_CSV"),
			Gzip:        getBool("AREA_GZIP", false),
			SQLitePath:  getEnv("AREA_SQLITE_PATH", filepath.Join("data", "area", "area.db")),
			PostgresDSN: os.Getenv("PG_DSN"),
		},
		IndexDir:   os.Getenv("AREA_INDEX_DIR"),
		IndexSize:  int64(getInt("AREA_INDEX_SIZE", int(store.DefaultIndexSize))),
		GeoMaxKm:   getFloat("AREA_GEO_MAX_KM", 0),
		Watch:      getBool("AREA_WATCH", false),
		ReloadHour: getInt("AREA_RELOAD_HOUR", -1),

		Addr:           getEnv("ADDR", ":8080"),
		APIBase:        strings.TrimRight(getEnv("API_BASE", "/api"), "/"),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		AdminAllow:     os.Getenv("ADMIN_ALLOW"),
		RealIPHeader:   os.Getenv("REAL_IP_HEADER"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		GeoCacheTTL:  time.Duration(getInt("GEO_CACHE_TTL_S", 3600)) * time.Second,
		GeoCacheSize: getInt("GEO_CACHE_SIZE", 4096),

		RateLimitEnabled: getBool("RATE_LIMIT_ENABLED", false),
		RateLimitQPS:     getFloat("RATE_LIMIT_QPS", 200),
		RateLimitBurst:   getInt("RATE_LIMIT_BURST", 0),

		TLSEnable:   getBool("TLS_ENABLE", false),
		TLSCertPath: getEnv("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:  getEnv("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = int(c.RateLimitQPS)
	}
	return c
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
