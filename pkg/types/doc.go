// Package types 定义 IBMesh 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他 ibmesh 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据：
//
//   - FabricAddress: 目的端 fabric 路由地址（GID + LID）
//   - ServiceID: 远端监听服务标识（32 位不透明值）
//   - AMID: 应用消息类型标识（活动消息 ID）
//   - RequestID: 连接管理器请求上下文句柄
//   - PathDescriptor: 单次派发的路径/QoS 描述
//   - PortAttrs: 本地端口属性（路径解析的源端输入）
package types
