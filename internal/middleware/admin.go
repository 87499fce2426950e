package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"area-api/internal/logger"
)

// 文档注释：管理接口防护（令牌 + 可选 IP/CIDR 白名单）
// 背景：重载接口会触发数据源读取与索引重建，只允许持有 x-admin-token 的调用方访问；
// 配置白名单时来源 IP 也必须命中。
// 约束：token 为空时一律拒绝；来源 IP 以 RemoteAddr 为准，如需识别上游真实 IP 通过 realIPHeader 指定。
type AdminGuard struct {
	token        string
	allowIPs     map[string]struct{}
	allowCIDRs   []*net.IPNet
	realIPHeader string
}

// NewAdminGuard allow 为逗号分隔的 IP 或 CIDR 列表，可为空
func NewAdminGuard(token, allow, realIPHeader string) *AdminGuard {
	g := &AdminGuard{token: token, allowIPs: map[string]struct{}{}, realIPHeader: strings.TrimSpace(realIPHeader)}
	for _, p := range strings.Split(allow, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			if _, n, err := net.ParseCIDR(p); err == nil {
				g.allowCIDRs = append(g.allowCIDRs, n)
			}
			continue
		}
		if ip := net.ParseIP(p); ip != nil {
			g.allowIPs[ip.String()] = struct{}{}
		}
	}
	return g
}

// Wrap 生成中间件
func (g *AdminGuard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if g.token == "" || subtle.ConstantTimeCompare([]byte(t), []byte(g.token)) != 1 {
			logger.L().Debug("admin_block", "reason", "token")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if len(g.allowIPs) > 0 || len(g.allowCIDRs) > 0 {
			ip := g.extractIP(r)
			if ip == nil || !g.allowed(ip) {
				logger.L().Debug("admin_block", "reason", "ip", "remote", r.RemoteAddr)
				w.WriteHeader(http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (g *AdminGuard) allowed(ip net.IP) bool {
	if _, ok := g.allowIPs[ip.String()]; ok {
		return true
	}
	for _, n := range g.allowCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// extractIP：优先指定头的首个有效 IP，否则取 RemoteAddr
func (g *AdminGuard) extractIP(r *http.Request) net.IP {
	if g.realIPHeader != "" {
		if raw := r.Header.Get(g.realIPHeader); raw != "" {
			first := strings.TrimSpace(strings.Split(raw, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
