package fabric

import (
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// MaxPrivateData CM 服务请求可携带的私有数据上限（字节）
const MaxPrivateData = types.MaxPrivateData

// Config 回环设备配置
type Config struct {
	// Port 设备模拟的本地端口属性
	Port types.PortAttrs

	// DeliveryWorkers 投递工作协程上限
	//
	// 默认值: 4
	DeliveryWorkers int
}

// DefaultConfig 返回默认配置
//
// 端口属性取一组固定的同子网测试值。
func DefaultConfig() Config {
	var gid types.GID
	gid[0] = 0xfe
	gid[1] = 0x80
	gid[15] = 0x01

	return Config{
		Port: types.PortAttrs{
			GID:        gid,
			LID:        1,
			PKey:       0xffff,
			SL:         0,
			ActiveMTU:  types.MTU2048,
			ActiveRate: types.Rate40Gbps,
		},
		DeliveryWorkers: 4,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.DeliveryWorkers <= 0 {
		return ErrInvalidConfig
	}
	if c.Port.GID.IsEmpty() {
		return ErrInvalidConfig
	}
	return nil
}

// WithPort 设置端口属性
func (c Config) WithPort(port types.PortAttrs) Config {
	c.Port = port
	return c
}

// WithDeliveryWorkers 设置投递工作协程上限
func (c Config) WithDeliveryWorkers(n int) Config {
	c.DeliveryWorkers = n
	return c
}
