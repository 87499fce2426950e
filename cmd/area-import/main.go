package main

import (
	"context"
	"database/sql"
	"os"
	"strings"

	"area-api/internal/config"
	"area-api/internal/ingest"
	"area-api/internal/logger"
	"area-api/internal/source"
	"area-api/internal/utils"
)

// 文档注释：把 CSV 数据集导入关系库
// 背景：读取 AREA_CODE_CSV / AREA_GEO_CSV（AREA_GZIP 控制解压），整体写入 AREA_IMPORT_TARGET 指定的库
// （sqlite 使用 AREA_SQLITE_PATH，postgres 使用 PG_*），同时写入数据版本供引擎复用持久化索引。
// 约束：单事务写入，失败不留下半批数据。
func main() {
	cfg := config.Load()
	l := logger.Setup()
	target := source.Kind(strings.ToLower(os.Getenv("AREA_IMPORT_TARGET")))
	if target == "" {
		target = source.KindSQLite
	}
	ctx := context.Background()

	csv, err := source.NewCSV(cfg.Source.CodePath, cfg.Source.GeoPath, cfg.Source.Gzip)
	if err != nil {
		l.Error("csv_open_error", "err", err)
		os.Exit(1)
	}
	var db *sql.DB
	switch target {
	case source.KindSQLite:
		db, err = source.OpenSQLite(cfg.Source.SQLitePath)
	case source.KindPostgres:
		dsn := cfg.Source.PostgresDSN
		if dsn == "" {
			dsn = utils.BuildPostgresDSNFromEnv()
		}
		db, err = utils.OpenPostgres(dsn)
	default:
		l.Error("import_target_unsupported", "target", target)
		os.Exit(1)
	}
	if err != nil {
		l.Error("db_open_error", "target", target, "err", err)
		os.Exit(1)
	}
	defer db.Close()
	st, err := ingest.Import(ctx, db, target, csv)
	if err != nil {
		l.Error("import_error", "err", err)
		os.Exit(1)
	}
	l.Info("import_ok", "target", target, "codes", st.Codes, "geo", st.Geo)
}
