package fabric

import "errors"

// 回环设备错误定义
var (
	// ErrClosed 设备已关闭
	ErrClosed = errors.New("fabric: device closed")

	// ErrUnknownRequest 未知的请求句柄
	ErrUnknownRequest = errors.New("fabric: unknown request id")

	// ErrServiceUnreachable 目的服务未注册
	ErrServiceUnreachable = errors.New("fabric: destination service unreachable")

	// ErrPrivateDataTooLarge 私有数据超出 CM 请求上限
	ErrPrivateDataTooLarge = errors.New("fabric: private data exceeds request capacity")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("fabric: invalid config")
)
