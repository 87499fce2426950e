package main

import (
	"context"
	"os"

	"area-api/internal/areadao"
	"area-api/internal/config"
	"area-api/internal/logger"
	"area-api/internal/store"
)

// 文档注释：预构建持久化索引
// 背景：在发布流程中提前读取数据源并写出 AREA_INDEX_DIR 下的索引文件，服务启动时按版本直接加载；
// 同时完整构建一次引擎，数据问题（孤儿编码、非法编码）在发布前暴露。
func main() {
	cfg := config.Load()
	l := logger.Setup()
	if cfg.IndexDir == "" {
		l.Error("index_dir_missing", "env", "AREA_INDEX_DIR")
		os.Exit(1)
	}
	ctx := context.Background()
	src, err := store.OpenSource(ctx, cfg.Source, cfg.IndexDir, cfg.IndexSize)
	if err != nil {
		l.Error("source_open_error", "err", err)
		os.Exit(1)
	}
	dao, err := areadao.Open(ctx, src)
	if err != nil {
		l.Error("index_build_error", "err", err)
		_ = src.Close()
		os.Exit(1)
	}
	st := dao.Stats()
	_ = dao.Close()
	l.Info("index_build_ok", "dir", cfg.IndexDir, "codes", st.Codes, "points", st.Points, "code_version", st.CodeVersion, "geo_version", st.GeoVersion)
}
