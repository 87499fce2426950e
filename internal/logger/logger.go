// 包 logger：统一初始化与获取日志器；通过环境变量控制日志级别与输出格式
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// 默认日志器：进程级复用；查询路径并发读取，使用原子指针
var defaultLogger atomic.Pointer[slog.Logger]

// 文档注释：初始化默认日志器
// 背景：LOG_LEVEL=debug|info|warn|error，LOG_FORMAT=json|text；输出到标准错误。
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter 与 Setup 相同，但输出到指定 Writer（测试与命令行工具使用）
func SetupWriter(w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	defaultLogger.Store(l)
	return l
}

// L：获取默认日志器；未初始化时按环境变量初始化
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return Setup()
}
