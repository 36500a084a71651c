package fabric

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/lib/log"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

var logger = log.Logger("core/fabric")

// ServiceHandler 本地注册服务的处理回调
//
// private 为请求携带的完整私有数据（消息帧），path 为请求路径。
type ServiceHandler func(private []byte, path types.PathDescriptor)

// delivery 一次排队等待投递的服务请求
type delivery struct {
	id      types.RequestID
	svc     types.ServiceID
	handler ServiceHandler
	private []byte
	path    types.PathDescriptor
}

// Loopback 回环 CM 设备
//
// 句柄分配同步完成。提交永不阻塞：投递排入无界队列立即返回，由
// 固定数量的工作协程排空。调用方可能持有接口临界区调用提交，而
// 完成事件回调又需要同一临界区，因此提交绝不能等待工作协程空闲。
type Loopback struct {
	cfg Config

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []delivery
	ids       map[types.RequestID]struct{}
	services  map[types.ServiceID]ServiceHandler
	listeners []interfaces.CompletionListener
	closed    bool

	group *errgroup.Group
}

// 确保实现接口
var _ interfaces.CMClient = (*Loopback)(nil)

// NewLoopback 创建回环设备并启动投递工作协程
func NewLoopback(cfg Config) (*Loopback, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Loopback{
		cfg:      cfg,
		ids:      make(map[types.RequestID]struct{}),
		services: make(map[types.ServiceID]ServiceHandler),
		group:    &errgroup.Group{},
	}
	d.cond = sync.NewCond(&d.mu)

	for i := 0; i < cfg.DeliveryWorkers; i++ {
		d.group.Go(d.runWorker)
	}
	return d, nil
}

// ==================== CMClient 调用面 ====================

// LocalAddress 返回设备端口的 fabric 地址
func (d *Loopback) LocalAddress() types.FabricAddress {
	return types.FabricAddress{GID: d.cfg.Port.GID, LID: d.cfg.Port.LID}
}

// PortAttrs 返回设备端口属性
func (d *Loopback) PortAttrs() types.PortAttrs {
	return d.cfg.Port
}

// CreateRequestID 分配请求上下文句柄
func (d *Loopback) CreateRequestID() (types.RequestID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return types.EmptyRequestID, ErrClosed
	}

	id := types.RequestID(uuid.NewString())
	d.ids[id] = struct{}{}
	return id, nil
}

// SendServiceRequest 提交服务请求
//
// 校验后将投递排入队列并立即返回，从不等待工作协程空闲。
// 分配的句柄在失败时不回收：与硬件 CM 一致，由调用方销毁。
func (d *Loopback) SendServiceRequest(id types.RequestID, req *interfaces.ServiceRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if _, ok := d.ids[id]; !ok {
		return ErrUnknownRequest
	}
	if len(req.PrivateData) > MaxPrivateData {
		return ErrPrivateDataTooLarge
	}

	private := make([]byte, len(req.PrivateData))
	copy(private, req.PrivateData)

	d.queue = append(d.queue, delivery{
		id:      id,
		svc:     req.ServiceID,
		handler: d.services[req.ServiceID],
		private: private,
		path:    req.Path,
	})
	d.cond.Signal()
	return nil
}

// DestroyRequestID 释放请求上下文句柄
func (d *Loopback) DestroyRequestID(id types.RequestID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ids[id]; !ok {
		return ErrUnknownRequest
	}
	delete(d.ids, id)
	return nil
}

// ==================== 服务注册与事件 ====================

// RegisterService 注册本地服务处理器
func (d *Loopback) RegisterService(id types.ServiceID, h ServiceHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.services[id] = h
}

// UnregisterService 注销本地服务处理器
func (d *Loopback) UnregisterService(id types.ServiceID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.services, id)
}

// AddListener 注册完成事件监听方
func (d *Loopback) AddListener(l interfaces.CompletionListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// ==================== 投递 ====================

// runWorker 投递工作协程主循环
//
// 排空队列后再退出：关闭时已排队的投递仍会执行。
func (d *Loopback) runWorker() error {
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return nil
		}
		dv := d.queue[0]
		d.queue[0] = delivery{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.deliver(dv)
	}
}

// deliver 执行一次投递并抛出完成/拒绝事件
func (d *Loopback) deliver(dv delivery) {
	ev := interfaces.CompletionEvent{RequestID: dv.id, ServiceID: dv.svc}
	if dv.handler != nil {
		dv.handler(dv.private, dv.path)
	} else {
		logger.Debug("投递失败：目的服务未注册", "service", dv.svc.String())
		ev.Err = ErrServiceUnreachable
	}

	d.mu.Lock()
	listeners := make([]interfaces.CompletionListener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, l := range listeners {
		l.HandleCompletion(ev)
	}
}

// Close 关闭设备并等待排队与在途的投递结束
func (d *Loopback) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	d.cond.Broadcast()
	leaked := len(d.ids)
	d.mu.Unlock()

	_ = d.group.Wait()

	if leaked > 0 {
		logger.Warn("设备关闭时仍有未销毁的请求句柄", "count", leaked)
	}
	return nil
}
