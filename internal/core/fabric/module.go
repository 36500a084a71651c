package fabric

import (
	"context"

	"go.uber.org/fx"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置（可选）
	Config *Config `optional:"true"`
}

// ProvideLoopback 提供回环设备
func ProvideLoopback(input ModuleInput) (*Loopback, error) {
	cfg := DefaultConfig()
	if input.Config != nil {
		cfg = *input.Config
	}
	return NewLoopback(cfg)
}

// ProvideClient 将回环设备作为 CM 客户端暴露
func ProvideClient(dev *Loopback) interfaces.CMClient {
	return dev
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC     fx.Lifecycle
	Device *Loopback
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Device.Close()
		},
	})
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("fabric",
		fx.Provide(
			ProvideLoopback,
			ProvideClient,
		),
		fx.Invoke(registerLifecycle),
	)
}
