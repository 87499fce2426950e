package ingest

import (
	"context"
	"time"

	"area-api/internal/logger"
)

// nextDailyAt：计算下一次指定整点（严格晚于 now）
// 约束：基于 now 所在时区；hour 越界时按 3 点处理
func nextDailyAt(now time.Time, hour int) time.Time {
	if hour < 0 || hour > 23 {
		hour = 3
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// 文档注释：在北京时间（Asia/Shanghai）每天指定整点执行重载
// 背景：数据源按天更新；错误由日志记录，任务继续调度；ctx 取消后协程退出。
// 约束：时区数据缺失时退回本地时区；不支持分钟级。
func StartDailyShanghai(ctx context.Context, hour int, run func(ctx context.Context) error) {
	l := logger.L()
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.Local
	}
	go func() {
		for {
			next := nextDailyAt(time.Now().In(loc), hour)
			l.Info("reload_scheduled", "next", next)
			t := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			l.Info("scheduled_reload_start")
			if err := run(ctx); err != nil {
				l.Error("scheduled_reload_error", "err", err)
			} else {
				l.Info("scheduled_reload_done")
			}
		}
	}()
}
