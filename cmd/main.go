// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"area-api/internal/api"
	"area-api/internal/areadao"
	"area-api/internal/config"
	"area-api/internal/ingest"
	"area-api/internal/logger"
	"area-api/internal/middleware"
	"area-api/internal/source"
	"area-api/internal/store"
	"area-api/internal/utils"
)

func main() {
	cfg := config.Load()
	l := logger.Setup()
	l.Debug("log_init_ok")
	l.Debug("config_loaded", "source", cfg.Source.Kind, "api_base", cfg.APIBase, "index_dir", cfg.IndexDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := store.OpenSource(ctx, cfg.Source, cfg.IndexDir, cfg.IndexSize)
	if err != nil {
		l.Error("source_open_error", "kind", cfg.Source.Kind, "err", err)
		os.Exit(1)
	}
	dao, err := areadao.Open(ctx, src, areadao.WithMaxDistanceKm(cfg.GeoMaxKm))
	if err != nil {
		l.Error("area_init_error", "err", err)
		_ = src.Close()
		os.Exit(1)
	}
	defer dao.Close()

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
		rc = nil
	} else {
		l.Info("redis_ping_ok")
	}

	reloadAll := func(ctx context.Context) error {
		return errors.Join(dao.ReloadCode(ctx), dao.ReloadGeo(ctx))
	}
	if cfg.ReloadHour >= 0 {
		ingest.StartDailyShanghai(ctx, cfg.ReloadHour, reloadAll)
	}
	if cfg.Watch && cfg.Source.Kind == source.KindCSV {
		codeAbs, _ := filepath.Abs(cfg.Source.CodePath)
		err := ingest.Watch(ctx, []string{cfg.Source.CodePath, cfg.Source.GeoPath}, ingest.DefaultDebounce, func(ctx context.Context, changed []string) {
			for _, p := range changed {
				var err error
				if p == codeAbs {
					err = dao.ReloadCode(ctx)
				} else {
					err = dao.ReloadGeo(ctx)
				}
				if err != nil {
					l.Error("watch_reload_error", "file", p, "err", err)
				}
			}
		})
		if err != nil {
			l.Error("watch_error", "err", err)
		} else {
			l.Info("watch_enabled", "code", cfg.Source.CodePath, "geo", cfg.Source.GeoPath)
		}
	}

	var rl func(http.Handler) http.Handler
	if cfg.RateLimitEnabled {
		rl = middleware.RateLimit(cfg.RateLimitQPS, cfg.RateLimitBurst)
	}
	geo := api.NewGeoService(dao, rc, cfg.GeoCacheSize, cfg.GeoCacheTTL)
	handler := api.NewRouter(dao, geo, api.Options{
		APIBase:        cfg.APIBase,
		AllowedOrigins: cfg.AllowedOrigins,
		Admin:          middleware.NewAdminGuard(cfg.AdminToken, cfg.AdminAllow, cfg.RealIPHeader).Wrap,
		RateLimit:      rl,
		AccessLog:      logger.AccessMiddleware(l),
	})
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	if cfg.TLSEnable {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "area-api.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		l.Info("listening", "addr", cfg.Addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
	}
	l.Info("server_stopped")
}
