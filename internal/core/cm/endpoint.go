package cm

import (
	"fmt"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// Endpoint 面向单个逻辑目的地的传输端点
//
// 只保存目的路由地址、目的服务标识和所属接口的非占有引用；
// 不直接占有任何 fabric 级资源。
type Endpoint struct {
	iface    *Iface
	destAddr types.FabricAddress
	destSvc  types.ServiceID
}

// 确保实现接口
var _ interfaces.Endpoint = (*Endpoint)(nil)

// Destination 返回端点的目的地址与服务标识
func (ep *Endpoint) Destination() (types.FabricAddress, types.ServiceID) {
	return ep.destAddr, ep.destSvc
}

// Send 派发一条活动消息
//
// 整个调用在接口临界区内执行：准入检查、帧构造、路径解析、CM 提
// 交与注册是一个原子观察单元。成功时返回打包后的载荷长度；帧在
// 返回前释放，请求句柄交由注册表持有直到完成/拒绝事件。
func (ep *Endpoint) Send(id types.AMID, pack interfaces.PackFunc) (int, error) {
	if !id.Valid() {
		panic(fmt.Sprintf("cm: AM id %d out of range [0, %d)", id, types.AMIDMax))
	}

	i := ep.iface
	i.mu.Lock()

	if i.closed {
		i.mu.Unlock()
		return 0, ErrClosed
	}

	if i.outstanding.full() {
		i.telemetry.RecordNoResource()
		i.mu.Unlock()
		return 0, ErrNoResource
	}

	frame := acquireFrame()
	payloadLen, err := packFrame(*frame, id, pack)
	if err != nil {
		releaseFrame(frame)
		i.mu.Unlock()
		return 0, err
	}

	path := ResolvePath(i.client.PortAttrs(), ep.destAddr)

	rid, err := i.client.CreateRequestID()
	if err != nil {
		releaseFrame(frame)
		i.mu.Unlock()
		return 0, fmt.Errorf("%w: create request context: %v", ErrIO, err)
	}

	req := interfaces.ServiceRequest{
		ServiceID:   ep.destSvc,
		Path:        path,
		PrivateData: (*frame)[:FrameHeaderSize+payloadLen],
		Timeout:     i.cfg.Timeout,
		RetryBudget: i.cfg.RetryBudget,
	}
	if err := i.client.SendServiceRequest(rid, &req); err != nil {
		// 本次尝试已占的 fabric 侧资源先释放再传播错误
		if derr := i.client.DestroyRequestID(rid); derr != nil {
			logger.Debug("回收失败提交的句柄出错", "request", rid.ShortString(), "error", derr)
		}
		releaseFrame(frame)
		i.mu.Unlock()
		return 0, fmt.Errorf("%w: submit: %v", ErrIO, err)
	}

	i.outstanding.insert(rid)
	i.recordPath(ep.destAddr, path)
	i.telemetry.RecordSend(id, payloadLen)
	i.mu.Unlock()

	releaseFrame(frame)

	logger.Debug("TX: 服务请求已提交",
		"request", rid.ShortString(),
		"dest", ep.destAddr.ShortString(),
		"service", ep.destSvc.String(),
		"am", uint8(id),
		"len", payloadLen)
	return payloadLen, nil
}

// PendingAdd 在资源耗尽后将操作排入准入队列
//
// 重检而非盲目入队：进入临界区后若槽位已空闲，返回 ErrBusy 让调
// 用方立即重试派发——此时入队会产生一个可能永不被驱动的陈旧条目
// （驱动只由完成事件触发，而槽位已空闲意味着没有事件在途）。
func (ep *Endpoint) PendingAdd(req *interfaces.PendingRequest) error {
	i := ep.iface
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrClosed
	}

	if !i.outstanding.full() {
		return ErrBusy
	}

	req.Owner = ep
	i.pending.push(req)
	i.telemetry.RecordPending()
	return nil
}

// PendingPurge 按队列顺序清除本端点拥有的全部排队条目
//
// 每清除一条调用一次 cb；其余条目保持相对顺序。
// 不触碰在途请求注册表。
func (ep *Endpoint) PendingPurge(cb interfaces.PendingCallback) {
	i := ep.iface
	i.mu.Lock()
	removed := i.pending.purge(ep)
	i.mu.Unlock()

	// 回调在临界区外执行，保持入队顺序
	for _, req := range removed {
		cb(req)
	}
}

// Flush 检查本接口上是否仍有在途请求
//
// 接口范围语义：任一端点的在途请求都会令冲刷等待。
func (ep *Endpoint) Flush() error {
	return ep.iface.Flush()
}

// Close 释放端点
//
// 清除其排队条目（逐条记录）；在途请求独立于端点生命周期，
// 保持由注册表持有直到完成/拒绝事件。
func (ep *Endpoint) Close() error {
	purged := 0
	ep.PendingPurge(func(*interfaces.PendingRequest) {
		purged++
	})
	if purged > 0 {
		logger.Warn("端点关闭时清除了排队条目",
			"dest", ep.destAddr.ShortString(), "count", purged)
	}
	return nil
}
