package source

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// 文档注释：打开 SQLite 文件库
// 背景：只读查询为主，单连接即可；驱动由构建标签决定（默认纯 Go 的 modernc，sqlite_cgo 标签使用 mattn/go-sqlite3）。
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path can't be empty")
	}
	db, err := sql.Open(SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}
