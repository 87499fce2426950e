package ingest

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"area-api/internal/logger"
)

// DefaultDebounce 数据文件变更的合并窗口
const DefaultDebounce = 2 * time.Second

// 文档注释：监听数据文件变更并触发回调
// 背景：监听文件所在目录（编辑器与拷贝工具常以重命名方式替换文件），按文件名过滤事件；
// 窗口期内的多次写入合并为一次回调，回调收到发生变化的文件集合。
// 约束：ctx 取消后停止监听并关闭 watcher；回调在监听协程中串行执行。
func Watch(ctx context.Context, paths []string, debounce time.Duration, onChange func(ctx context.Context, changed []string)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			_ = w.Close()
			return err
		}
	}
	l := logger.L()
	go func() {
		defer w.Close()
		pending := make(map[string]bool)
		var timer *time.Timer
		var timerC <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				name, _ := filepath.Abs(ev.Name)
				if !files[name] || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
					continue
				}
				pending[name] = true
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				timerC = timer.C
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.Warn("watch_error", "err", err)
			case <-timerC:
				timerC = nil
				changed := make([]string, 0, len(pending))
				for p := range pending {
					changed = append(changed, p)
				}
				pending = make(map[string]bool)
				l.Info("data_files_changed", "files", changed)
				onChange(ctx, changed)
			}
		}
	}()
	return nil
}
