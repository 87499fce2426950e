// 包 migrate：行政区表结构
package migrate

import (
	"context"
	"database/sql"

	"area-api/internal/logger"
)

// 背景：首次运行自动创建编码表、地理表与版本表，保障后续导入与加载
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；语句同时兼容 SQLite 与 PostgreSQL
var stmts = []string{
	`CREATE TABLE IF NOT EXISTS area_code (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		keyword TEXT NOT NULL DEFAULT '',
		enname TEXT NOT NULL DEFAULT '',
		hide INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS area_geo (
		code TEXT PRIMARY KEY,
		center TEXT NOT NULL DEFAULT '',
		polygon TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS area_version (
		kind TEXT PRIMARY KEY,
		version TEXT NOT NULL
	)`,
}

// EnsureSchema 创建缺失的表
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
