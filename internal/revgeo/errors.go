package revgeo

import "errors"

var (
	// ErrNoPoints 索引中没有任何可用参考点
	ErrNoPoints = errors.New("geo index holds no points")
	// ErrTooFar 最近参考点超出配置的距离上限
	ErrTooFar = errors.New("nearest area exceeds max distance")
	// ErrInvalidCoordinate 经纬度越界或非数值
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)
