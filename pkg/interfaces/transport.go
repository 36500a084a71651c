package interfaces

import (
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// ============================================================================
//                              派发回调
// ============================================================================

// PackFunc 载荷打包回调
//
// 直接向帧体 buf 序列化载荷，返回写入的字节数。
// 返回值超出 len(buf) 视为打包失败。
type PackFunc func(buf []byte) int

// PendingCallback 准入队列回调
//
// 排队条目被驱动（资源可用）或被清除（purge）时调用一次。
type PendingCallback func(req *PendingRequest)

// PendingRequest 一个准入延迟的操作
//
// 调用方在 Send 返回资源不足后构造此结构并交给 PendingAdd。
// Owner 由 PendingAdd 填写（用于选择性清除），调用方不得修改。
type PendingRequest struct {
	// Callback 继续执行的回调
	Callback PendingCallback

	// Owner 拥有该条目的端点（由 PendingAdd 填写）
	Owner Endpoint
}

// ============================================================================
//                              传输端点契约
// ============================================================================

// Endpoint 面向单个逻辑目的地的传输端点
//
// 端点本身不占有任何 fabric 级资源；所有资源核算都在其所属的
// 接口上下文中。所有方法可被多 goroutine 并发调用。
type Endpoint interface {
	// Destination 返回端点的目的地址与服务标识
	Destination() (types.FabricAddress, types.ServiceID)

	// Send 派发一条活动消息，返回打包后的载荷长度
	//
	// 槽位耗尽返回 ErrNoResource（经准入队列重试）；
	// 帧分配失败返回 ErrNoMemory；CM 提交失败返回 ErrIO 包装。
	Send(id types.AMID, pack PackFunc) (int, error)

	// PendingAdd 在资源耗尽后将操作排入准入队列
	//
	// 若槽位已空闲则返回 ErrBusy（立即重试派发，绝不入队）。
	PendingAdd(req *PendingRequest) error

	// PendingPurge 按队列顺序清除本端点拥有的全部排队条目
	//
	// 每清除一条调用一次 cb；不属于本端点的条目保持相对顺序。
	PendingPurge(cb PendingCallback)

	// Flush 检查本接口上是否仍有在途请求
	//
	// 无在途工作返回 nil；否则返回 ErrInProgress，调用方稍后轮询。
	Flush() error

	// Close 释放端点（清除其排队条目；在途请求不受影响）
	Close() error
}

// Iface 接口上下文：端点工厂与接口级资源核算
type Iface interface {
	// NewEndpoint 面向目的地址与服务标识创建端点
	NewEndpoint(addr types.FabricAddress, svc types.ServiceID) (Endpoint, error)

	// Flush 检查接口上是否仍有在途请求
	Flush() error

	// Outstanding 返回当前在途请求数
	Outstanding() int

	// PendingLen 返回准入队列长度
	PendingLen() int

	// Close 销毁接口上下文
	//
	// 关闭时注册表或准入队列非空属于编程错误：大声记录但继续清理。
	Close() error
}
