package stats

import "errors"

// 统计子系统错误定义
var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid stats config")

	// ErrInvalidDest 目的地格式无效
	ErrInvalidDest = errors.New("invalid stats destination")

	// ErrInvalidTrigger 触发器格式无效
	ErrInvalidTrigger = errors.New("invalid stats trigger")

	// ErrClosed 上下文已关闭
	ErrClosed = errors.New("stats context closed")

	// ErrTruncatedDump 二进制转储声明的长度超出剩余数据
	ErrTruncatedDump = errors.New("truncated stats dump")
)
