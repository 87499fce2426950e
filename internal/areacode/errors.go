package areacode

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 编码无法解析（格式错误、前缀未知或节点不存在）
	ErrNotFound = errors.New("area code not found")
	// ErrEmptyIndex 索引未加载任何节点
	ErrEmptyIndex = errors.New("area code index is empty")
)

// ErrOrphanCode 构建时发现上级编码缺失的节点
type ErrOrphanCode struct {
	Code   string
	Parent string
}

func (e *ErrOrphanCode) Error() string {
	return fmt.Sprintf("orphan area code %q: parent %q missing", e.Code, e.Parent)
}

// ErrMalformedCode 构建时发现结构非法的编码
type ErrMalformedCode struct {
	Code string
}

func (e *ErrMalformedCode) Error() string {
	return fmt.Sprintf("malformed area code %q", e.Code)
}
