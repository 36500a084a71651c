package interfaces

import (
	"time"

	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// ============================================================================
//                              CM 服务调用面
// ============================================================================

// ServiceRequest 一次无连接服务请求（SIDR 风格）
//
// PrivateData 携带完整的消息帧（头部 + 载荷），对 CM 层不透明。
type ServiceRequest struct {
	// ServiceID 目的服务标识
	ServiceID types.ServiceID

	// Path 本次请求使用的路径描述符
	Path types.PathDescriptor

	// PrivateData 不透明私有数据（消息帧）
	PrivateData []byte

	// Timeout 由 fabric 服务执行的请求超时
	Timeout time.Duration

	// RetryBudget CM 层重试预算
	RetryBudget uint
}

// CMClient fabric 连接管理器服务的窄调用面
//
// 本组件通过且仅通过这三个调用 + 端口属性查询使用外部 CM 服务。
// Submit 在接口临界区内同步调用；实现必须是快速、非阻塞网络往返的
// 本地调用（延迟成本由设计显式接受）。
type CMClient interface {
	// LocalAddress 返回本端口的 fabric 地址
	LocalAddress() types.FabricAddress

	// PortAttrs 返回本端口当前属性（路径解析的源端输入）
	PortAttrs() types.PortAttrs

	// CreateRequestID 为一次请求分配 CM 上下文句柄
	CreateRequestID() (types.RequestID, error)

	// SendServiceRequest 提交无连接服务请求
	//
	// 失败时调用方负责销毁已分配的句柄。
	SendServiceRequest(id types.RequestID, req *ServiceRequest) error

	// DestroyRequestID 释放 CM 上下文句柄
	DestroyRequestID(id types.RequestID) error
}

// ============================================================================
//                              完成事件契约
// ============================================================================

// CompletionEvent 异步完成/拒绝事件
//
// 由外部 fabric 服务（或回环设备）在请求终结时投递。
// Err == nil 表示完成；否则表示拒绝及其原因。
type CompletionEvent struct {
	// RequestID 被终结的请求句柄
	RequestID types.RequestID

	// ServiceID 原请求的目的服务
	ServiceID types.ServiceID

	// Err 拒绝原因（nil = 正常完成）
	Err error
}

// CompletionListener 完成事件接收方
//
// 接口上下文实现此接口：收到事件后释放未决槽位并驱动准入队列。
type CompletionListener interface {
	// HandleCompletion 处理一个完成/拒绝事件
	HandleCompletion(ev CompletionEvent)
}
