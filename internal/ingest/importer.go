// 包 ingest：数据导入（平面文件 → 关系库）、定时重载与数据文件监听
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"area-api/internal/logger"
	"area-api/internal/migrate"
	"area-api/internal/revgeo"
	"area-api/internal/source"
)

// ImportStats 导入结果
type ImportStats struct {
	Codes       int
	Geo         int
	CodeVersion string
	GeoVersion  string
}

// 文档注释：把数据源整体导入关系库
// 背景：在单个事务内清空并重写 area_code / area_geo，同时写入 area_version；
// 读者在提交前始终看到旧数据与旧版本，引擎重载时据版本判断持久化索引是否可复用。
// 参数：kind 决定占位符风格（sqlite 使用 ?，postgres 使用 $n）；src 通常为 CSV 数据源。
// 异常：任一行写入失败整体回滚。
func Import(ctx context.Context, db *sql.DB, kind source.Kind, src source.DataSource) (ImportStats, error) {
	l := logger.L()
	var st ImportStats
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		return st, fmt.Errorf("ensure schema: %w", err)
	}
	codes, err := src.CodeRecords(ctx)
	if err != nil {
		return st, err
	}
	geo, err := src.GeoRecords(ctx)
	if err != nil {
		return st, err
	}
	if st.CodeVersion, err = src.CodeVersion(ctx); err != nil {
		return st, err
	}
	if st.GeoVersion, err = src.GeoVersion(ctx); err != nil {
		return st, err
	}
	l.Info("import_begin", "source", src.Name(), "codes", len(codes), "geo", len(geo))

	ph := func(n int) string {
		ps := make([]string, n)
		for i := range ps {
			ps[i] = source.Placeholder(kind, i+1)
		}
		return strings.Join(ps, ",")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return st, err
	}
	defer tx.Rollback()

	for _, s := range []string{"DELETE FROM area_code", "DELETE FROM area_geo"} {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return st, err
		}
	}
	stmtCode, err := tx.PrepareContext(ctx, "INSERT INTO area_code(code,name,keyword,enname,hide) VALUES("+ph(5)+")")
	if err != nil {
		return st, err
	}
	defer stmtCode.Close()
	seen := make(map[string]int, len(codes))
	for i, r := range codes {
		seen[strings.TrimSpace(r.Code)] = i
	}
	for i, r := range codes {
		code := strings.TrimSpace(r.Code)
		if seen[code] != i {
			continue // 重复编码以最后一条为准，与索引构建一致
		}
		hide := 0
		if r.Hidden {
			hide = 1
		}
		if _, err := stmtCode.ExecContext(ctx, code, r.Name, r.Keyword, r.EnName, hide); err != nil {
			return st, fmt.Errorf("insert code %q: %w", code, err)
		}
		st.Codes++
	}
	stmtGeo, err := tx.PrepareContext(ctx, "INSERT INTO area_geo(code,center,polygon) VALUES("+ph(3)+")")
	if err != nil {
		return st, err
	}
	defer stmtGeo.Close()
	seenGeo := make(map[string]int, len(geo))
	for i, r := range geo {
		seenGeo[r.Code] = i
	}
	for i, r := range geo {
		if seenGeo[r.Code] != i {
			continue
		}
		if _, err := stmtGeo.ExecContext(ctx, r.Code, revgeo.FormatCenter(r.Center), revgeo.FormatPolygons(r.Polygons)); err != nil {
			return st, fmt.Errorf("insert geo %q: %w", r.Code, err)
		}
		st.Geo++
	}
	for _, kv := range [][2]string{{source.VersionKindCode, st.CodeVersion}, {source.VersionKindGeo, st.GeoVersion}} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM area_version WHERE kind = "+source.Placeholder(kind, 1), kv[0]); err != nil {
			return st, err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO area_version(kind,version) VALUES("+ph(2)+")", kv[0], kv[1]); err != nil {
			return st, err
		}
	}
	if err := tx.Commit(); err != nil {
		return st, err
	}
	l.Info("import_done", "codes", st.Codes, "geo", st.Geo, "code_version", st.CodeVersion, "geo_version", st.GeoVersion)
	return st, nil
}
