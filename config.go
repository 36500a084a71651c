package ibmesh

import (
	"go.uber.org/fx"

	"github.com/ibmesh/go-ibmesh/internal/core/cm"
	"github.com/ibmesh/go-ibmesh/internal/core/fabric"
	"github.com/ibmesh/go-ibmesh/internal/core/stats"
	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
)

// Config 通信域配置
//
// 聚合各子系统配置；零值不可直接使用，从 DefaultConfig 出发修改。
type Config struct {
	// CM 接口上下文配置
	CM cm.Config

	// Fabric 回环设备配置（注入外部 CM 客户端时忽略）
	Fabric fabric.Config

	// Stats 统计子系统配置
	Stats stats.Config
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		CM:     cm.DefaultConfig(),
		Fabric: fabric.DefaultConfig(),
		Stats:  stats.DefaultConfig(),
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if err := c.CM.Validate(); err != nil {
		return err
	}
	if err := c.Fabric.Validate(); err != nil {
		return err
	}
	return c.Stats.Validate()
}

// domainConfig 通信域内部配置
type domainConfig struct {
	config Config

	// client 外部注入的 CM 客户端；nil 时使用回环设备
	client interfaces.CMClient

	// fxOpts 附加 Fx 选项
	fxOpts []fx.Option
}

func newDomainConfig() *domainConfig {
	return &domainConfig{config: DefaultConfig()}
}
