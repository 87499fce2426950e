//go:build sqlite_cgo

package source

// CGO_ENABLED=1 go build -tags sqlite_cgo ./...
import _ "github.com/mattn/go-sqlite3"

// SQLiteDriver database/sql 驱动名
const SQLiteDriver = "sqlite3"
