package cm

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/lib/log"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

var logger = log.Logger("core/cm")

// Iface 接口上下文
//
// 每个通信域一个：持有 CM 客户端、配置、在途请求注册表与准入控制
// 队列，以及串行化上述全部状态变更的唯一临界区。
type Iface struct {
	cfg       Config
	client    interfaces.CMClient
	telemetry interfaces.TelemetryRecorder

	// mu 接口临界区
	//
	// 保护 outstanding 与 pending；派发路径（准入检查、帧构造、
	// CM 提交、注册）整体在其内执行。
	mu          sync.Mutex
	outstanding *registry
	pending     pendingQueue
	closed      bool

	// recent 诊断用最近路径缓存（目的地址 → 最近一次解析结果）
	// 仅观测，解析器从不读取
	recent *lru.Cache[string, types.PathDescriptor]
}

// 确保实现接口
var (
	_ interfaces.Iface              = (*Iface)(nil)
	_ interfaces.CompletionListener = (*Iface)(nil)
)

// NewIface 创建接口上下文
//
// client 为显式注入的 CM 设备依赖；telemetry 为 nil 时使用空实现。
func NewIface(client interfaces.CMClient, telemetry interfaces.TelemetryRecorder, cfg Config) (*Iface, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrInvalidConfig
	}
	if telemetry == nil {
		telemetry = interfaces.NopTelemetry{}
	}

	recent, err := lru.New[string, types.PathDescriptor](cfg.RecentPaths)
	if err != nil {
		return nil, err
	}

	logger.Info("接口上下文已创建",
		"local", client.LocalAddress().ShortString(),
		"maxOutstanding", cfg.MaxOutstanding,
		"timeout", cfg.Timeout,
		"retryBudget", cfg.RetryBudget)

	return &Iface{
		cfg:         cfg,
		client:      client,
		telemetry:   telemetry,
		outstanding: newRegistry(cfg.MaxOutstanding),
		recent:      recent,
	}, nil
}

// NewEndpoint 面向目的地址与服务标识创建端点
func (i *Iface) NewEndpoint(addr types.FabricAddress, svc types.ServiceID) (interfaces.Endpoint, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil, ErrClosed
	}

	logger.Debug("端点已创建", "dest", addr.ShortString(), "service", svc.String())
	return &Endpoint{iface: i, destAddr: addr, destSvc: svc}, nil
}

// ==================== 完成事件 ====================

// HandleCompletion 处理一个完成/拒绝事件
//
// 从注册表摘除句柄、销毁 CM 上下文，并驱动准入队列：每释放一个
// 槽位按 FIFO 通知一个队首条目，先于任何新到的准入请求。
func (i *Iface) HandleCompletion(ev interfaces.CompletionEvent) {
	i.mu.Lock()
	if !i.outstanding.remove(ev.RequestID) {
		i.mu.Unlock()
		logger.Debug("忽略未知请求的完成事件", "request", ev.RequestID.ShortString())
		return
	}
	head := i.pending.popHead()
	i.mu.Unlock()

	if err := i.client.DestroyRequestID(ev.RequestID); err != nil {
		logger.Debug("销毁请求句柄失败", "request", ev.RequestID.ShortString(), "error", err)
	}

	if ev.Err != nil {
		logger.Debug("请求被拒绝", "request", ev.RequestID.ShortString(), "error", ev.Err)
	}

	// 回调在临界区外执行：继续操作通常会重新进入派发路径
	if head != nil {
		head.Callback(head)
	}
}

// ==================== 冲刷 ====================

// Flush 检查接口上是否仍有在途请求
//
// 无在途工作返回 nil；否则返回 ErrInProgress，由外部进展引擎驱动
// 注册表最终排空后再次轮询。「立即完成」与「需等待」上报遥测，
// 不影响返回值契约。
func (i *Iface) Flush() error {
	i.mu.Lock()
	waited := i.outstanding.count() > 0
	i.mu.Unlock()

	i.telemetry.RecordFlush(waited)
	if waited {
		return ErrInProgress
	}
	return nil
}

// ==================== 观测 ====================

// Outstanding 返回当前在途请求数
func (i *Iface) Outstanding() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.outstanding.count()
}

// PendingLen 返回准入队列长度
func (i *Iface) PendingLen() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pending.len()
}

// Diagnostics 接口诊断快照
type Diagnostics struct {
	// LocalAddress 本端口地址
	LocalAddress types.FabricAddress

	// Outstanding 在途请求数
	Outstanding int

	// PendingLen 准入队列长度
	PendingLen int

	// Config 接口配置
	Config Config

	// RecentPaths 最近解析的路径（目的地址字符串 → 描述符）
	RecentPaths map[string]types.PathDescriptor
}

// Diagnostics 返回诊断快照
func (i *Iface) Diagnostics() Diagnostics {
	i.mu.Lock()
	defer i.mu.Unlock()

	paths := make(map[string]types.PathDescriptor, i.recent.Len())
	for _, key := range i.recent.Keys() {
		if p, ok := i.recent.Peek(key); ok {
			paths[key] = p
		}
	}

	return Diagnostics{
		LocalAddress: i.client.LocalAddress(),
		Outstanding:  i.outstanding.count(),
		PendingLen:   i.pending.len(),
		Config:       i.cfg,
		RecentPaths:  paths,
	}
}

// recordPath 登记一次路径解析结果（临界区内调用）
func (i *Iface) recordPath(dest types.FabricAddress, path types.PathDescriptor) {
	i.recent.Add(dest.String(), path)
}

// ==================== 销毁 ====================

// Close 销毁接口上下文
//
// 销毁时注册表或准入队列非空属于编程错误：大声记录但不视为崩溃，
// 清理仍然继续（逐个销毁遗留的 CM 句柄并汇总错误）。
func (i *Iface) Close() error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return ErrClosed
	}
	i.closed = true

	leakedPending := i.pending.len()
	i.pending.entries = nil
	leaked := i.outstanding.drain()
	i.mu.Unlock()

	if len(leaked) > 0 {
		logger.Error("接口销毁时仍有在途请求", "count", len(leaked))
	}
	if leakedPending > 0 {
		logger.Error("接口销毁时准入队列非空", "count", leakedPending)
	}

	var err error
	for _, id := range leaked {
		err = multierr.Append(err, i.client.DestroyRequestID(id))
	}

	logger.Info("接口上下文已关闭")
	return err
}
