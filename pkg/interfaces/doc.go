// Package interfaces 定义 IBMesh 各模块间的消费接口
//
// 接口按关注点拆分：
//
//   - fabric.go: 连接管理器（CM）服务的窄调用面与完成事件契约
//   - transport.go: 面向应用的传输端点契约（派发/准入/冲刷）
//   - telemetry.go: 遥测记录面（fire-and-forget，永不向调用方报错）
//
// 实现方返回具体结构体，消费方接受接口（accept interfaces,
// return structs）。
package interfaces
