package areadao

import "area-api/internal/revgeo"

type options struct {
	geo         revgeo.Options
	closeSource bool
}

// Option 配置 DAO
type Option func(*options)

// WithMaxDistanceKm 设置反地理最近点距离上限；0 表示不限制
func WithMaxDistanceKm(km float64) Option {
	return func(o *options) {
		if km > 0 {
			o.geo.MaxDistanceKm = km
		}
	}
}

// WithGeoCandidates 设置多边形判定的候选数
func WithGeoCandidates(k int) Option {
	return func(o *options) { o.geo.Candidates = k }
}

// WithCloseSource 控制 Close 时是否关闭数据源（默认关闭）
func WithCloseSource(v bool) Option {
	return func(o *options) { o.closeSource = v }
}

func defaultOptions() options {
	return options{geo: revgeo.Options{Candidates: revgeo.DefaultCandidates}, closeSource: true}
}
