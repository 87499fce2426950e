// 包 middleware：入口限流与管理接口防护
package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"area-api/internal/logger"
)

// 文档注释：令牌桶限流中间件
// 背景：在流量峰值时对入口限速，避免重载期间查询堆积；速率与突发量来自配置。
// 约束：不排队，超限直接返回 429；qps<=0 时不启用。
func RateLimit(qps float64, burst int) func(http.Handler) http.Handler {
	if qps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = int(qps)
		if burst < 1 {
			burst = 1
		}
	}
	lim := rate.NewLimiter(rate.Limit(qps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				logger.L().Debug("rate_limited", "path", r.URL.Path)
				w.Header().Set("retry-after", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
