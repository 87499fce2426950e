// 包 utils：PostgreSQL / Redis / TLS 连接工具，统一环境变量读取
package utils

import (
	"database/sql"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// 文档注释：使用 DSN 打开 PostgreSQL 连接池
// 背景：行政区数据只在初始化与重载时批量读取，连接池无需很大；可由 PG_MAX_OPEN_CONNS/PG_MAX_IDLE_CONNS 覆盖。
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(envInt("PG_MAX_OPEN_CONNS", 8))
	db.SetMaxIdleConns(envInt("PG_MAX_IDLE_CONNS", 2))
	return db, nil
}

// BuildPostgresDSNFromEnv 由 PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE 组装 DSN
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	user := envStr("PG_USER", "postgres")
	dsn := "postgres://" + user
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + envStr("PG_HOST", "localhost") + ":" + envStr("PG_PORT", "5432") + "/" + envStr("PG_DB", "area")
	dsn += "?sslmode=" + envStr("PG_SSLMODE", "disable")
	return dsn
}

func OpenPostgresFromEnv() (*sql.DB, error) {
	return OpenPostgres(BuildPostgresDSNFromEnv())
}

func envStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
