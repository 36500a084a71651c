package ibmesh

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// Option 通信域配置选项
type Option func(cfg *domainConfig) error

// WithConfig 整体替换配置
func WithConfig(config Config) Option {
	return func(cfg *domainConfig) error {
		if err := config.Validate(); err != nil {
			return fmt.Errorf("apply config: %w", err)
		}
		cfg.config = config
		return nil
	}
}

// WithCMClient 注入外部 CM 客户端（硬件设备或测试替身）
//
// 注入后回环设备不再装配，完成事件由调用方负责接入：客户端若实现
// AddListener，接口会在启动时自动注册。
func WithCMClient(client interfaces.CMClient) Option {
	return func(cfg *domainConfig) error {
		if client == nil {
			return fmt.Errorf("cm client must not be nil")
		}
		cfg.client = client
		return nil
	}
}

// WithMaxOutstanding 设置在途请求槽位上限
func WithMaxOutstanding(n int) Option {
	return func(cfg *domainConfig) error {
		if n <= 0 {
			return fmt.Errorf("max outstanding must be positive, got %d", n)
		}
		cfg.config.CM = cfg.config.CM.WithMaxOutstanding(n)
		return nil
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(cfg *domainConfig) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		cfg.config.CM = cfg.config.CM.WithTimeout(d)
		return nil
	}
}

// WithPort 设置回环设备端口属性
func WithPort(port types.PortAttrs) Option {
	return func(cfg *domainConfig) error {
		cfg.config.Fabric.Port = port
		return nil
	}
}

// WithStats 启用统计子系统
//
// dest 与 trigger 的格式见 stats 配置说明，如 WithStats("-", "exit")。
func WithStats(dest, trigger string) Option {
	return func(cfg *domainConfig) error {
		cfg.config.Stats = cfg.config.Stats.WithDest(dest).WithTrigger(trigger)
		return nil
	}
}

// WithFxOption 附加自定义 Fx 选项（扩展用）
func WithFxOption(opts ...fx.Option) Option {
	return func(cfg *domainConfig) error {
		cfg.fxOpts = append(cfg.fxOpts, opts...)
		return nil
	}
}
