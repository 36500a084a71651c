// Package fabric 实现连接管理器服务的回环设备
//
// Loopback 是 interfaces.CMClient 的全进程内实现：
//
//   - 句柄分配：为每次请求分配 UUID 请求上下文
//   - 服务投递：异步将服务请求投递给本地注册的服务处理器
//   - 完成事件：投递成功后向监听方抛出完成事件；目的服务未注册时
//     抛出拒绝事件
//
// 用途：
//   - Domain 未注入硬件 CM 客户端时的默认设备
//   - 所有需要端到端完成/驱动行为的测试
//
// # 并发安全
//
// 所有方法可并发调用；投递由受限 errgroup 工作组执行。
//
// # Fx 模块集成
//
//	app := fx.New(
//	    fabric.Module(),
//	    fx.Invoke(func(client interfaces.CMClient) { ... }),
//	)
package fabric
