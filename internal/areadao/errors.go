package areadao

import (
	"errors"
	"fmt"

	"area-api/internal/areacode"
	"area-api/internal/revgeo"
)

var (
	// ErrNotReady 未初始化或已关闭
	ErrNotReady = errors.New("area dao not ready")
	// ErrNotFound 编码无法解析或地理索引为空
	ErrNotFound = errors.New("not found")
	// ErrAlreadyInitialized 对已就绪实例重复调用 Init
	ErrAlreadyInitialized = errors.New("area dao already initialized")
)

// InitError 初始化失败；实例保持 Uninitialized
//
// 原始错误可通过 errors.Unwrap 获取。
type InitError struct {
	Cause error
}

func (e *InitError) Error() string { return fmt.Sprintf("area init: %v", e.Cause) }

func (e *InitError) Unwrap() error { return e.Cause }

// ReloadError 单个子索引重建失败；原索引保持不变
type ReloadError struct {
	Index string
	Cause error
}

func (e *ReloadError) Error() string { return fmt.Sprintf("area reload %s: %v", e.Index, e.Cause) }

func (e *ReloadError) Unwrap() error { return e.Cause }

// translateError 把索引层错误统一归入 ErrNotFound，保留原错误链
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, areacode.ErrNotFound),
		errors.Is(err, revgeo.ErrNoPoints),
		errors.Is(err, revgeo.ErrTooFar),
		errors.Is(err, revgeo.ErrInvalidCoordinate):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
