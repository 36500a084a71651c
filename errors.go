package ibmesh

import (
	"errors"

	"github.com/ibmesh/go-ibmesh/internal/core/cm"
)

// 通信域错误定义
var (
	// ErrAlreadyStarted 通信域已经启动
	ErrAlreadyStarted = errors.New("domain already started")

	// ErrNotStarted 通信域尚未启动
	ErrNotStarted = errors.New("domain not started")

	// ErrNoLoopback 注入了外部 CM 客户端，回环服务注册不可用
	ErrNoLoopback = errors.New("domain is not backed by the loopback device")
)

// 派发路径错误（从接口层重导出，调用方无需依赖内部包）
var (
	// ErrNoResource 在途槽位耗尽
	ErrNoResource = cm.ErrNoResource

	// ErrNoMemory 消息帧构造失败
	ErrNoMemory = cm.ErrNoMemory

	// ErrIO CM 提交失败
	ErrIO = cm.ErrIO

	// ErrBusy 准入检查发现仍有空闲槽位
	ErrBusy = cm.ErrBusy

	// ErrInProgress 冲刷时仍有在途请求
	ErrInProgress = cm.ErrInProgress

	// ErrClosed 接口已关闭
	ErrClosed = cm.ErrClosed
)
