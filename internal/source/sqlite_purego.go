//go:build !sqlite_cgo

package source

// 纯 Go SQLite 驱动，无需 C 编译器
import _ "modernc.org/sqlite"

// SQLiteDriver database/sql 驱动名
const SQLiteDriver = "sqlite"
