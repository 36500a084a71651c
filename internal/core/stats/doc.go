// Package stats 实现统计子系统
//
// 以计数器节点树为核心：每个节点属于一个类（类定义计数器名集合），
// 挂接在父节点之下，根节点持有运行时长计数器。节点计数器用原子操作
// 更新，树结构变更由上下文互斥锁串行化。
//
// 支持三种转储触发方式（exit / timer:<interval> / signal:<signo>）与
// 三种目的地（文件或流路径、udp:host[:port] 数据报客户端、
// nats:url/subject 发布者），以及文本与二进制（varint 定长前缀）两种
// 序列化格式。设置了退出转储时，被释放的节点转入非活跃列表而非立即
// 释放，以便最终转储仍能看到其计数。
//
// 另提供 Prometheus 采集器视图与面向派发路径的遥测记录器。
package stats
