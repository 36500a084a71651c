// Package cm 实现连接管理器介导的传输端点
//
// 端点面向无预建连接的短活动消息：每次派发构造一个消息帧，
// 通过 CM 服务提交一次无连接服务请求（SIDR 风格），由接口上下文
// 跟踪有限的在途请求槽位。
//
// # 核心职责
//
//   - 路径解析：由端点目的地址与本地端口属性确定路径描述符
//   - 在途注册表：容量受限的请求句柄集合，单一临界区保护
//   - 活动消息派发：帧构造 → 路径解析 → CM 提交 → 注册
//   - 准入控制队列：资源耗尽时的 FIFO 排队，入队前重检
//   - 冲刷协议：检查接口上是否仍有在途工作
//
// # 并发安全
//
// 每个 Iface 有且仅有一把互斥锁，串行化在途计数/注册表与准入队
// 列的全部读写。CM 提交发生在临界区内：同接口上的并发派发方彼此
// 完全串行，换取「在途多少请求」的严格一致视图。锁内不做任何挂起
// 等待；完成永远经由异步事件通道观察。
//
// # 资源模型
//
// 帧是瞬态的，仅存活于一次派发调用内；请求句柄在注册表中存活到
// 完成/拒绝事件到达。取消只对排队未提交的条目可用（purge）；已
// 提交的请求只能被完成/拒绝事件或接口销毁终结。
//
// # Fx 模块集成
//
//	app := fx.New(
//	    fabric.Module(),
//	    cm.Module(),
//	    fx.Invoke(func(iface *cm.Iface) { ... }),
//	)
package cm
