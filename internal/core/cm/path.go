package cm

import (
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// ResolvePath 为一次派发计算路径描述符
//
// 确定性：只取决于本地端口当前属性与端点存储的目的地址，
// 无外部可观察的失败。策略固定不可配置：
//
//   - 路径恒为可逆（连接管理器只支持可逆路径）
//   - 流量类别/流标签/跳数限制为 0（同子网假设）
//   - 分区键、服务级别、MTU、链路速率取本地端口属性的精确值
//   - 报文生存时间取最优可用，值为 0（不限定）
//
// 源端字段来自端口属性，目的端字段来自目的地址，互不影响。
func ResolvePath(port types.PortAttrs, dest types.FabricAddress) types.PathDescriptor {
	return types.PathDescriptor{
		SGID: port.GID,
		DGID: dest.GID,
		SLID: port.LID,
		DLID: dest.LID,

		Reversible: true,
		NumPaths:   0,

		PKey:         port.PKey,
		SL:           port.SL,
		TrafficClass: 0,
		FlowLabel:    0,
		HopLimit:     0,

		MTU:         port.ActiveMTU,
		MTUSelector: types.SelectorExact,

		Rate:         port.ActiveRate,
		RateSelector: types.SelectorExact,

		PacketLifetime:         0,
		PacketLifetimeSelector: types.SelectorBest,

		Preference: 0,
	}
}
