package cm

import (
	"context"

	"go.uber.org/fx"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Client CM 服务客户端（必需，显式注入的设备依赖）
	Client interfaces.CMClient

	// Config 配置（可选）
	Config *Config `optional:"true"`

	// Telemetry 遥测记录面（可选）
	Telemetry interfaces.TelemetryRecorder `optional:"true"`
}

// ProvideIface 提供接口上下文
func ProvideIface(input ModuleInput) (*Iface, error) {
	cfg := DefaultConfig()
	if input.Config != nil {
		cfg = *input.Config
	}
	return NewIface(input.Client, input.Telemetry, cfg)
}

// ProvideInterface 将接口上下文作为契约接口暴露
func ProvideInterface(iface *Iface) interfaces.Iface {
	return iface
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC    fx.Lifecycle
	Iface *Iface
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Iface.Close()
		},
	})
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("cm",
		fx.Provide(
			ProvideIface,
			ProvideInterface,
		),
		fx.Invoke(registerLifecycle),
	)
}
