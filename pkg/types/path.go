package types

import "fmt"

// ============================================================================
//                              路径属性枚举
// ============================================================================

// MTU 路径 MTU 枚举（InfiniBand 编码）
type MTU uint8

// 路径 MTU 取值
const (
	MTU256  MTU = 1
	MTU512  MTU = 2
	MTU1024 MTU = 3
	MTU2048 MTU = 4
	MTU4096 MTU = 5
)

// Bytes 返回 MTU 对应的字节数；未知编码返回 0
func (m MTU) Bytes() int {
	switch m {
	case MTU256:
		return 256
	case MTU512:
		return 512
	case MTU1024:
		return 1024
	case MTU2048:
		return 2048
	case MTU4096:
		return 4096
	default:
		return 0
	}
}

// String 返回 MTU 的可读表示
func (m MTU) String() string {
	if b := m.Bytes(); b != 0 {
		return fmt.Sprintf("mtu%d", b)
	}
	return fmt.Sprintf("mtu(%d)", uint8(m))
}

// Rate 链路速率枚举（InfiniBand 编码）
type Rate uint8

// 链路速率取值；RateMax 表示「最高可用速率」
const (
	RateMax     Rate = 0
	Rate2_5Gbps Rate = 2
	Rate5Gbps   Rate = 5
	Rate10Gbps  Rate = 3
	Rate20Gbps  Rate = 6
	Rate40Gbps  Rate = 7
	Rate100Gbps Rate = 9
)

// Selector 路径属性选择器
//
// 描述描述符中某个属性值的匹配方式：精确匹配或取最优可用值。
type Selector uint8

// 选择器取值
const (
	// SelectorGreater 大于给定值
	SelectorGreater Selector = 0

	// SelectorLess 小于给定值
	SelectorLess Selector = 1

	// SelectorExact 精确匹配给定值
	SelectorExact Selector = 2

	// SelectorBest 取最优可用值（给定值仅作下界提示）
	SelectorBest Selector = 3
)

// String 返回选择器的可读表示
func (s Selector) String() string {
	switch s {
	case SelectorGreater:
		return "gt"
	case SelectorLess:
		return "lt"
	case SelectorExact:
		return "eq"
	case SelectorBest:
		return "best"
	default:
		return fmt.Sprintf("selector(%d)", uint8(s))
	}
}

// ============================================================================
//                              PathDescriptor - 路径描述符
// ============================================================================

// PathDescriptor 单次派发使用的路径/QoS 描述
//
// 每次派发重新计算，不持久化。源端字段来自本地端口属性，
// 目的端字段来自 Endpoint 存储的目的地址。
type PathDescriptor struct {
	// SGID 源全局标识
	SGID GID

	// DGID 目的全局标识
	DGID GID

	// SLID 源本地标识
	SLID uint16

	// DLID 目的本地标识
	DLID uint16

	// Reversible 路径是否可逆（连接管理器要求可逆路径）
	Reversible bool

	// NumPaths 候选路径数量（0 = 使用首选路径）
	NumPaths uint8

	// PKey 分区键
	PKey uint16

	// SL 服务级别
	SL uint8

	// TrafficClass 流量类别（同子网假设下为 0）
	TrafficClass uint8

	// FlowLabel 流标签（同子网假设下为 0）
	FlowLabel uint32

	// HopLimit 跳数限制（同子网假设下为 0）
	HopLimit uint8

	// MTU 路径 MTU 与其选择器
	MTU         MTU
	MTUSelector Selector

	// Rate 链路速率与其选择器
	Rate         Rate
	RateSelector Selector

	// PacketLifetime 报文生存时间与其选择器
	// 0 + SelectorBest 表示不限定
	PacketLifetime         uint8
	PacketLifetimeSelector Selector

	// Preference 路径优先序（0 = 首选路径）
	Preference uint8
}

// String 返回描述符的日志表示
func (p PathDescriptor) String() string {
	return fmt.Sprintf(
		"path{slid %d sgid %s dlid %d dgid %s pkey 0x%x sl %d mtu %s(%s) rate %d(%s) life %d(%s) rev %v}",
		p.SLID, p.SGID.ShortString(), p.DLID, p.DGID.ShortString(),
		p.PKey, p.SL, p.MTU, p.MTUSelector, p.Rate, p.RateSelector,
		p.PacketLifetime, p.PacketLifetimeSelector, p.Reversible)
}
