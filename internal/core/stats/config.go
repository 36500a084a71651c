package stats

// DefaultUDPPort udp: 目的地省略端口时的默认端口
const DefaultUDPPort = 37873

// Config 统计子系统配置
//
// Dest 与 Trigger 均为空时统计不启用：节点分配返回 nil 节点，
// 所有计数操作为空操作。
type Config struct {
	// Dest 转储目的地
	//
	// 支持的格式:
	//   - ""                 不启用
	//   - "<path>"           追加写入文件，"-" 表示标准输出
	//   - "udp:host[:port]"  UDP 数据报客户端
	//   - "nats:url/subject" NATS 发布者
	Dest string

	// Trigger 转储触发方式
	//
	// 支持的格式:
	//   - ""                  仅手动 Dump
	//   - "exit"              关闭时转储（含非活跃节点）
	//   - "timer:<interval>"  周期转储，如 "timer:5s"
	//   - "signal:<signo>"    收到信号时转储，如 "signal:USR1"
	Trigger string

	// Binary 使用二进制序列化（varint 定长前缀）
	//
	// 默认值: false（文本格式）
	Binary bool
}

// DefaultConfig 返回默认配置（不启用）
func DefaultConfig() Config {
	return Config{}
}

// Validate 验证配置
//
// 格式合法性在打开目的地/设置触发器时检查，这里只做静态校验。
func (c Config) Validate() error {
	return nil
}

// WithDest 设置转储目的地
func (c Config) WithDest(dest string) Config {
	c.Dest = dest
	return c
}

// WithTrigger 设置转储触发方式
func (c Config) WithTrigger(trigger string) Config {
	c.Trigger = trigger
	return c
}

// WithBinary 设置二进制序列化
func (c Config) WithBinary(binary bool) Config {
	c.Binary = binary
	return c
}
