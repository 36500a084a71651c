package stats

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置（可选，缺省不启用统计）
	Config *Config `optional:"true"`
}

// ProvideContext 提供统计上下文
func ProvideContext(input ModuleInput) (*Context, error) {
	cfg := DefaultConfig()
	if input.Config != nil {
		cfg = *input.Config
	}
	return New(cfg)
}

// ProvideRecorder 提供派发路径遥测记录器
func ProvideRecorder(ctx *Context) (interfaces.TelemetryRecorder, error) {
	return NewRecorder(ctx, "iface")
}

// registerCollector 将采集器注册到 Prometheus 注册表
//
// 统计未启用时不注册：采集器无指标可导出。
func registerCollector(reg prometheus.Registerer, c *Collector) error {
	if !c.ctx.Active() {
		return nil
	}
	return reg.Register(c)
}

// unregisterCollector 从 Prometheus 注册表注销采集器
func unregisterCollector(reg prometheus.Registerer, c *Collector) {
	if !c.ctx.Active() {
		return
	}
	reg.Unregister(c)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC        fx.Lifecycle
	Ctx       *Context
	Collector *Collector

	// Registerer 外部 Prometheus 注册表（可选，缺省用全局注册表）
	Registerer prometheus.Registerer `optional:"true"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	reg := input.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return registerCollector(reg, input.Collector)
		},
		OnStop: func(_ context.Context) error {
			unregisterCollector(reg, input.Collector)
			return input.Ctx.Close()
		},
	})
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("stats",
		fx.Provide(
			ProvideContext,
			ProvideRecorder,
			NewCollector,
		),
		fx.Invoke(registerLifecycle),
	)
}
