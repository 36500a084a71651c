package types

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ============================================================================
//                              GID - 全局路由标识
// ============================================================================

// GIDSize GID 的字节长度（InfiniBand 全局标识符为 128 位）
const GIDSize = 16

// GID fabric 全局唯一路由标识符
//
// 对应 InfiniBand 的 Global Identifier。
//
// 外部表示格式：
//   - String(): Base58 编码（日志、配置）
type GID [GIDSize]byte

// EmptyGID 空 GID
var EmptyGID GID

// ErrInvalidGID 无效的 GID 错误
var ErrInvalidGID = errors.New("invalid GID: must be 16-byte Base58")

// String 返回 GID 的 Base58 字符串表示
func (g GID) String() string {
	if g.IsEmpty() {
		return ""
	}
	return base58.Encode(g[:])
}

// ShortString 返回 GID 的短字符串表示
//
// 格式：Base58 前 8 个字符，用于日志中的简短标识。
func (g GID) ShortString() string {
	s := g.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// IsEmpty 检查 GID 是否为空
func (g GID) IsEmpty() bool {
	return g == EmptyGID
}

// ParseGID 从 Base58 字符串解析 GID
func ParseGID(s string) (GID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return EmptyGID, fmt.Errorf("%w: %v", ErrInvalidGID, err)
	}
	if len(raw) != GIDSize {
		return EmptyGID, ErrInvalidGID
	}
	var g GID
	copy(g[:], raw)
	return g, nil
}

// ============================================================================
//                              FabricAddress - 目的路由地址
// ============================================================================

// FabricAddress fabric 路由地址
//
// 由全局标识（GID）和本地路由标识（LID）组成，
// 唯一确定 fabric 上的一个端口。
type FabricAddress struct {
	// GID 全局唯一标识
	GID GID

	// LID 子网内本地路由标识
	LID uint16
}

// String 返回地址的字符串表示，格式 <base58-gid>/<lid>
func (a FabricAddress) String() string {
	return fmt.Sprintf("%s/%d", a.GID.String(), a.LID)
}

// ShortString 返回日志用的短表示
func (a FabricAddress) ShortString() string {
	return fmt.Sprintf("%s/%d", a.GID.ShortString(), a.LID)
}

// IsEmpty 检查地址是否为空
func (a FabricAddress) IsEmpty() bool {
	return a.GID.IsEmpty() && a.LID == 0
}

// ============================================================================
//                              ServiceID / AMID / RequestID
// ============================================================================

// ServiceID 远端监听服务标识符（不透明 32 位值）
type ServiceID uint32

// String 返回服务 ID 的十六进制表示
func (s ServiceID) String() string {
	return fmt.Sprintf("0x%x", uint32(s))
}

// AMID 活动消息类型标识符
//
// 有效范围 [0, AMIDMax)；超出范围属于调用方契约违规。
type AMID uint8

// AMIDMax 活动消息 ID 的上界（不含）
const AMIDMax AMID = 32

// Valid 检查 AMID 是否在有效范围内
func (id AMID) Valid() bool {
	return id < AMIDMax
}

// MaxPrivateData CM 服务请求可携带的私有数据上限（字节）
//
// 对应 SIDR 请求私有数据区的硬件限制。
const MaxPrivateData = 216

// RequestID 连接管理器请求上下文句柄
//
// 由 fabric 服务分配，代表一次在途请求；
// 在完成/拒绝事件到达前由未决请求注册表持有。
type RequestID string

// EmptyRequestID 空请求句柄
const EmptyRequestID RequestID = ""

// ShortString 返回日志用的短表示
func (r RequestID) ShortString() string {
	if len(r) > 8 {
		return string(r[:8])
	}
	return string(r)
}

// ============================================================================
//                              PortAttrs - 本地端口属性
// ============================================================================

// PortAttrs 本地 fabric 端口的当前属性
//
// 路径解析时源端字段（SGID/SLID/PKey/SL/MTU/Rate）全部取自此处。
type PortAttrs struct {
	// GID 本端口全局标识
	GID GID

	// LID 本端口本地标识
	LID uint16

	// PKey 分区键
	PKey uint16

	// SL 服务级别
	SL uint8

	// ActiveMTU 端口当前协商的路径 MTU
	ActiveMTU MTU

	// ActiveRate 端口当前链路速率
	ActiveRate Rate
}
