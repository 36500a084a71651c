package ibmesh

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/ibmesh/go-ibmesh/internal/core/cm"
	"github.com/ibmesh/go-ibmesh/internal/core/fabric"
	"github.com/ibmesh/go-ibmesh/internal/core/stats"
	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 装配顺序（按依赖）：
//  1. 统计子系统（提供遥测记录面）
//  2. CM 客户端：外部注入，或回环设备
//  3. 接口上下文（依赖客户端与遥测）
//  4. 完成事件接线与组件回填
func buildFxApp(cfg *domainConfig, d *Domain) (*fx.App, error) {
	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		// 配置注入
		fx.Supply(&cfg.config.CM),
		fx.Supply(&cfg.config.Stats),

		// 统计子系统（未配置目的地时为空操作）
		stats.Module(),
	}

	// CM 客户端：外部注入优先，否则装配回环设备
	if cfg.client != nil {
		client := cfg.client
		modules = append(modules, fx.Provide(func() interfaces.CMClient {
			return client
		}))
	} else {
		modules = append(modules,
			fx.Supply(&cfg.config.Fabric),
			fabric.Module(),
		)
	}

	// 接口上下文
	modules = append(modules, cm.Module())

	// 完成事件接线与 Domain 组件回填
	modules = append(modules,
		fx.Invoke(wireCompletionEvents),
		fx.Invoke(injectDomainComponents(d)),
	)

	// 用户自定义扩展
	modules = append(modules, cfg.fxOpts...)

	// 禁用 Fx 日志输出（避免干扰用户日志）
	modules = append(modules,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...), nil
}

// completionSource 能主动上报完成事件的 CM 客户端
type completionSource interface {
	AddListener(l interfaces.CompletionListener)
}

// wireCompletionEvents 将接口注册为客户端的完成事件监听方
func wireCompletionEvents(client interfaces.CMClient, iface *cm.Iface) {
	if src, ok := client.(completionSource); ok {
		src.AddListener(iface)
	}
}

// domainComponents 回填到 Domain 的组件集合
type domainComponents struct {
	fx.In

	Iface     *cm.Iface
	Client    interfaces.CMClient
	Stats     *stats.Context
	Collector *stats.Collector
	Telemetry interfaces.TelemetryRecorder
}

// injectDomainComponents 构造组件回填函数
func injectDomainComponents(d *Domain) func(domainComponents) {
	return func(c domainComponents) {
		d.iface = c.Iface
		d.client = c.Client
		d.statsCtx = c.Stats
		d.collector = c.Collector
		d.telemetry = c.Telemetry
	}
}
