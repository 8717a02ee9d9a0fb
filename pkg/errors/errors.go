package errors

import (
	"errors"
	"fmt"
)

// ── 错误类型（均为非致命：调用方降级处理，不中断进程） ──

var (
	// ErrTransportUnavailable 无法访问持久层，调用方返回空结果并提示警告
	ErrTransportUnavailable = errors.New("持久层不可用")
	// ErrSlotWriteFailed 单个岗位写入失败，按岗位收集，不中断其余岗位
	ErrSlotWriteFailed = errors.New("岗位写入失败")
	// ErrCatalogUnavailable 人员名册不可用，静默回退到内置示例名单
	ErrCatalogUnavailable = errors.New("人员名册不可用")
)

// SlotWriteError 记录某个岗位 (vehicle, position) 的写入失败
type SlotWriteError struct {
	Vehicle  string
	Position string
	Err      error
}

func (e *SlotWriteError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Vehicle, e.Position, e.Err)
}

// Unwrap 同时暴露 ErrSlotWriteFailed 与底层传输错误，便于 errors.Is 判断
func (e *SlotWriteError) Unwrap() []error {
	return []error{ErrSlotWriteFailed, e.Err}
}
