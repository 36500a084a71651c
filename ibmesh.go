package ibmesh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/ibmesh/go-ibmesh/internal/core/cm"
	"github.com/ibmesh/go-ibmesh/internal/core/fabric"
	"github.com/ibmesh/go-ibmesh/internal/core/stats"
	"github.com/ibmesh/go-ibmesh/pkg/lib/log"
	"github.com/ibmesh/go-ibmesh/pkg/types"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
)

var logger = log.Logger("ibmesh")

// defaultStopTimeout Close 时等待各组件停止的时限
const defaultStopTimeout = 15 * time.Second

// Domain 通信域
//
// 拥有一套完整的传输栈：CM 客户端（回环设备或外部注入）、接口
// 上下文与统计子系统，各组件由 Fx 应用装配并管理生命周期。
type Domain struct {
	config *domainConfig
	app    *fx.App

	mu      sync.Mutex
	started bool
	closed  bool

	// 额外接口（NewIface 创建，Close 时统一关闭）
	extraIfaces []*cm.Iface

	// 由 Fx 注入
	iface     *cm.Iface
	client    interfaces.CMClient
	statsCtx  *stats.Context
	collector *stats.Collector
	telemetry interfaces.TelemetryRecorder
}

// New 创建通信域（不启动）
func New(opts ...Option) (*Domain, error) {
	cfg := newDomainConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	d := &Domain{config: cfg}

	var err error
	d.app, err = buildFxApp(cfg, d)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return d, nil
}

// Open 创建并启动通信域
//
// 等价于 New() + Start()。
func Open(ctx context.Context, opts ...Option) (*Domain, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := d.Start(ctx); err != nil {
		return nil, fmt.Errorf("start domain: %w", err)
	}
	return d, nil
}

// Start 启动通信域
func (d *Domain) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrAlreadyStarted
	}
	if err := d.app.Start(ctx); err != nil {
		return fmt.Errorf("start fx app: %w", err)
	}

	d.started = true
	logger.Info("通信域已启动", "local", d.client.LocalAddress().ShortString())
	return nil
}

// ==================== 派发面 ====================

// Iface 返回通信域的默认接口
func (d *Domain) Iface() interfaces.Iface {
	return d.iface
}

// NewEndpoint 在默认接口上创建端点
func (d *Domain) NewEndpoint(addr types.FabricAddress, svc types.ServiceID) (interfaces.Endpoint, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil, ErrNotStarted
	}
	return d.iface.NewEndpoint(addr, svc)
}

// NewIface 创建一个额外的接口
//
// 与默认接口共享 CM 客户端与遥测记录面，使用相同配置；
// 由通信域在 Close 时统一关闭。
func (d *Domain) NewIface() (interfaces.Iface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil, ErrNotStarted
	}

	iface, err := cm.NewIface(d.client, d.telemetry, d.config.config.CM)
	if err != nil {
		return nil, err
	}
	if src, ok := d.client.(completionSource); ok {
		src.AddListener(iface)
	}

	d.extraIfaces = append(d.extraIfaces, iface)
	return iface, nil
}

// Flush 检查默认接口是否已排空
func (d *Domain) Flush() error {
	if d.iface == nil {
		return ErrNotStarted
	}
	return d.iface.Flush()
}

// LocalAddress 返回本端 fabric 地址
func (d *Domain) LocalAddress() types.FabricAddress {
	if d.client == nil {
		return types.FabricAddress{}
	}
	return d.client.LocalAddress()
}

// ==================== 回环服务 ====================

// RegisterService 在回环设备上注册本地服务处理器
//
// 仅通信域由回环设备支撑时可用；注入了外部 CM 客户端时返回
// ErrNoLoopback。
func (d *Domain) RegisterService(id types.ServiceID, handler func(private []byte, path types.PathDescriptor)) error {
	lb, ok := d.client.(*fabric.Loopback)
	if !ok {
		return ErrNoLoopback
	}
	lb.RegisterService(id, fabric.ServiceHandler(handler))
	return nil
}

// UnregisterService 注销回环设备上的本地服务处理器
func (d *Domain) UnregisterService(id types.ServiceID) error {
	lb, ok := d.client.(*fabric.Loopback)
	if !ok {
		return ErrNoLoopback
	}
	lb.UnregisterService(id)
	return nil
}

// ==================== 观测 ====================

// Stats 返回统计上下文（未启用时所有操作为空操作）
func (d *Domain) Stats() *stats.Context {
	return d.statsCtx
}

// StatsCollector 返回统计计数器的 Prometheus 采集器
//
// 启动时已注册到全局注册表（或注入的 prometheus.Registerer）；
// 此访问器供调用方接入自建注册表。
func (d *Domain) StatsCollector() prometheus.Collector {
	return d.collector
}

// ==================== 销毁 ====================

// Close 关闭通信域
//
// 先关闭额外接口，再停止 Fx 应用（依次关闭默认接口、回环设备与
// 统计子系统），所有错误聚合返回。
func (d *Domain) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.started
	extras := d.extraIfaces
	d.extraIfaces = nil
	d.mu.Unlock()

	var err error
	for _, iface := range extras {
		err = multierr.Append(err, iface.Close())
	}

	if started {
		ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
		defer cancel()
		err = multierr.Append(err, d.app.Stop(ctx))
	}

	logger.Info("通信域已关闭")
	return err
}
