package cm

import (
	"time"
)

// Config 接口上下文配置
//
// 在接口创建时提供，此后不可变。
type Config struct {
	// MaxOutstanding 在途请求槽位上限
	//
	// 默认值: 32
	MaxOutstanding int

	// Timeout 单次请求超时（由外部 fabric 服务执行）
	//
	// 默认值: 5 秒
	Timeout time.Duration

	// RetryBudget CM 层重试预算
	//
	// 默认值: 8
	RetryBudget uint

	// RecentPaths 诊断用最近路径缓存容量
	//
	// 仅供 Diagnostics() 观测，解析器从不读取。
	// 默认值: 32
	RecentPaths int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxOutstanding: 32,
		Timeout:        5 * time.Second,
		RetryBudget:    8,
		RecentPaths:    32,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.MaxOutstanding <= 0 {
		return ErrInvalidConfig
	}
	if c.Timeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RecentPaths <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// WithMaxOutstanding 设置在途槽位上限
func (c Config) WithMaxOutstanding(n int) Config {
	c.MaxOutstanding = n
	return c
}

// WithTimeout 设置请求超时
func (c Config) WithTimeout(d time.Duration) Config {
	c.Timeout = d
	return c
}

// WithRetryBudget 设置重试预算
func (c Config) WithRetryBudget(n uint) Config {
	c.RetryBudget = n
	return c
}
