// 包 api：行政区查询 HTTP 接口（chi 路由、错误映射、反地理缓存）
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"area-api/internal/metrics"
)

// Options 路由参数；中间件为 nil 时跳过
type Options struct {
	APIBase        string
	AllowedOrigins []string
	Admin          func(http.Handler) http.Handler
	RateLimit      func(http.Handler) http.Handler
	AccessLog      func(http.Handler) http.Handler
}

// 文档注释：构建路由
// 背景：查询接口挂在 APIBase 下；重载接口需经过管理防护；/healthz 与 /metrics 位于根路径供探针与抓取。
// 约束：未配置 Admin 时重载接口一律 403，避免误暴露。
func NewRouter(e Engine, geo *GeoService, o Options) http.Handler {
	if o.APIBase == "" {
		o.APIBase = "/api"
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	h := &handler{e: e, geo: geo}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if o.AccessLog != nil {
		r.Use(o.AccessLog)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-Token"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route(o.APIBase, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if o.RateLimit != nil {
				r.Use(o.RateLimit)
			}
			r.Get("/children", h.children)
			r.Get("/find", h.find)
			r.Get("/search", h.search)
			r.Get("/related", h.related)
			r.Get("/geo", h.geoSearch)
			r.Get("/stats", h.stats)
		})
		r.Route("/reload", func(r chi.Router) {
			if o.Admin != nil {
				r.Use(o.Admin)
			} else {
				r.Use(func(http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) })
				})
			}
			r.Post("/code", h.reloadCode)
			r.Post("/geo", h.reloadGeo)
		})
	})
	return r
}
