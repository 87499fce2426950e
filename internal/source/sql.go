package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"area-api/internal/areacode"
	"area-api/internal/logger"
	"area-api/internal/revgeo"
)

// 版本表中的 kind 取值
const (
	VersionKindCode = "code"
	VersionKindGeo  = "geo"
)

type placeholder func(i int) string

func postgresPlaceholder(i int) string { return "$" + strconv.Itoa(i) }

func sqlitePlaceholder(int) string { return "?" }

// Placeholder 返回指定关系型数据源的第 i 个参数占位符（从 1 开始）
func Placeholder(k Kind, i int) string {
	if k == KindPostgres {
		return postgresPlaceholder(i)
	}
	return sqlitePlaceholder(i)
}

// 文档注释：关系型数据源（SQLite 文件库 / PostgreSQL 网络库）
// 背景：表结构由 migrate.EnsureSchema 创建，area-import 负责写入数据与版本。
// 约束：版本读取 area_version；缺失视为未知版本。
type SQL struct {
	db   *sql.DB
	name string
	ph   placeholder
}

func newSQL(ctx context.Context, db *sql.DB, name string, ph placeholder) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", name, err)
	}
	return &SQL{db: db, name: name, ph: ph}, nil
}

// NewSQLite 以已打开的 SQLite 连接构建数据源（连接所有权转移给数据源）
func NewSQLite(ctx context.Context, db *sql.DB, name string) (*SQL, error) {
	return newSQL(ctx, db, name, sqlitePlaceholder)
}

// NewPostgres 以已打开的 PostgreSQL 连接构建数据源（连接所有权转移给数据源）
func NewPostgres(ctx context.Context, db *sql.DB) (*SQL, error) {
	return newSQL(ctx, db, "postgres", postgresPlaceholder)
}

func (s *SQL) Name() string { return s.name }

func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) CodeVersion(ctx context.Context) (string, error) { return s.version(ctx, VersionKindCode) }

func (s *SQL) GeoVersion(ctx context.Context) (string, error) { return s.version(ctx, VersionKindGeo) }

func (s *SQL) version(ctx context.Context, kind string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT version FROM area_version WHERE kind = "+s.ph(1), kind).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: read %s version: %w", s.name, kind, err)
	}
	return v, nil
}

func (s *SQL) CodeRecords(ctx context.Context) ([]areacode.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code, name, COALESCE(keyword, ''), COALESCE(enname, ''), hide FROM area_code ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("%s: query area_code: %w", s.name, err)
	}
	defer rows.Close()
	var out []areacode.Record
	for rows.Next() {
		var r areacode.Record
		var hide int
		if err := rows.Scan(&r.Code, &r.Name, &r.Keyword, &r.EnName, &hide); err != nil {
			return nil, fmt.Errorf("%s: scan area_code: %w", s.name, err)
		}
		r.Hidden = hide != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: read area_code: %w", s.name, err)
	}
	logger.L().Debug("sql_code_loaded", "source", s.name, "rows", len(out))
	return out, nil
}

func (s *SQL) GeoRecords(ctx context.Context) ([]revgeo.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code, COALESCE(center, ''), COALESCE(polygon, '') FROM area_geo ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("%s: query area_geo: %w", s.name, err)
	}
	defer rows.Close()
	var out []revgeo.Record
	skipped := 0
	for rows.Next() {
		var code, center, polygon string
		if err := rows.Scan(&code, &center, &polygon); err != nil {
			return nil, fmt.Errorf("%s: scan area_geo: %w", s.name, err)
		}
		rec, ok, err := revgeo.ParseRecord(code, center, polygon)
		if err != nil {
			return nil, fmt.Errorf("%s: area_geo %s: %w", s.name, code, err)
		}
		if !ok {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: read area_geo: %w", s.name, err)
	}
	logger.L().Debug("sql_geo_loaded", "source", s.name, "rows", len(out), "skipped", skipped)
	return out, nil
}
