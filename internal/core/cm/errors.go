package cm

import "errors"

// 传输端点错误分类
//
// 本组件从不在内部重试；重试/退避策略由调用方依据这些状态驱动。
var (
	// ErrNoResource 在途槽位耗尽（瞬态；经准入控制队列重试）
	ErrNoResource = errors.New("cm: no resource")

	// ErrNoMemory 帧分配/打包失败（瞬态；调用方可直接重试）
	ErrNoMemory = errors.New("cm: no memory")

	// ErrIO CM 服务提交失败（不在内部重试，按原样向上传播）
	ErrIO = errors.New("cm: io error")

	// ErrBusy 非失败信号：槽位已空闲，立即重试派发而非排队
	// （仅由 PendingAdd 的重检分支返回）
	ErrBusy = errors.New("cm: busy, retry now")

	// ErrInProgress 冲刷未完成，稍后轮询
	ErrInProgress = errors.New("cm: flush in progress")

	// ErrClosed 接口上下文已关闭
	ErrClosed = errors.New("cm: interface closed")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("cm: invalid config")
)
