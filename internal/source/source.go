// 包 source：行政区数据源（CSV 平面文件 / SQLite / PostgreSQL）
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"area-api/internal/areacode"
	"area-api/internal/revgeo"
	"area-api/internal/utils"
)

// 文档注释：数据源契约
// 背景：引擎在初始化与重载时调用；各实现只负责把底层存储物化为记录，不持有索引。
// 约束：Version 返回空串表示版本未知（持久化索引不会复用缓存）；GeoRecords 无地理数据时返回空切片。
type DataSource interface {
	Name() string
	CodeVersion(ctx context.Context) (string, error)
	GeoVersion(ctx context.Context) (string, error)
	CodeRecords(ctx context.Context) ([]areacode.Record, error)
	GeoRecords(ctx context.Context) ([]revgeo.Record, error)
	Close() error
}

// Kind 数据源类型
type Kind string

const (
	KindCSV      Kind = "csv"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// ErrUnsupportedKind 未知或未编译的数据源类型
var ErrUnsupportedKind = errors.New("unsupported data source kind")

// Params 数据源参数；按 Kind 取用对应字段
type Params struct {
	Kind        Kind
	CodePath    string
	GeoPath     string
	Gzip        bool
	SQLitePath  string
	PostgresDSN string
}

// 文档注释：按类型打开数据源
// 背景：平面文件仅校验路径存在；关系型数据源建立连接并 Ping，连接失败在初始化阶段即暴露。
func Open(ctx context.Context, p Params) (DataSource, error) {
	switch Kind(strings.ToLower(string(p.Kind))) {
	case KindCSV, "":
		return NewCSV(p.CodePath, p.GeoPath, p.Gzip)
	case KindSQLite:
		db, err := OpenSQLite(p.SQLitePath)
		if err != nil {
			return nil, err
		}
		return newSQL(ctx, db, "sqlite:"+p.SQLitePath, sqlitePlaceholder)
	case KindPostgres:
		dsn := p.PostgresDSN
		if dsn == "" {
			dsn = utils.BuildPostgresDSNFromEnv()
		}
		db, err := utils.OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return newSQL(ctx, db, "postgres", postgresPlaceholder)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, p.Kind)
}
