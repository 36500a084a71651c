package stats

import (
	"fmt"
	"sync/atomic"
)

// Class 计数器节点类
//
// 类在节点间共享：同类节点拥有相同的计数器名集合。
type Class struct {
	// Name 类名
	Name string

	// CounterNames 计数器名，下标即计数器编号
	CounterNames []string
}

// Node 计数器节点
//
// 计数器用原子操作更新，不需要持树锁；子节点列表的变更由
// Context 的互斥锁串行化。释放时若设置了退出转储，节点转入
// 父节点的非活跃列表，计数保留到最终转储。
//
// nil 节点上的所有计数操作均为空操作：统计未启用时节点分配
// 返回 nil，调用方无需区分。
type Node struct {
	cls      *Class
	name     string
	parent   *Node
	counters []uint64

	// 仅在 Context 锁内访问
	active   []*Node
	inactive []*Node
}

// Name 返回节点名
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

// ClassName 返回节点类名
func (n *Node) ClassName() string {
	if n == nil {
		return ""
	}
	return n.cls.Name
}

// Add 将编号 counter 的计数器增加 delta
func (n *Node) Add(counter int, delta uint64) {
	if n == nil {
		return
	}
	atomic.AddUint64(&n.counters[counter], delta)
}

// Set 将编号 counter 的计数器设为 value
func (n *Node) Set(counter int, value uint64) {
	if n == nil {
		return
	}
	atomic.StoreUint64(&n.counters[counter], value)
}

// Get 返回编号 counter 的计数器当前值
func (n *Node) Get(counter int) uint64 {
	if n == nil {
		return 0
	}
	return atomic.LoadUint64(&n.counters[counter])
}

// String 返回节点的日志表示
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s:%s", n.cls.Name, n.name)
}

// newNode 分配节点并初始化计数器
func newNode(cls *Class, name string) *Node {
	return &Node{
		cls:      cls,
		name:     name,
		counters: make([]uint64, len(cls.CounterNames)),
	}
}

// removeChild 从父节点的活跃列表摘除 child（锁内调用）
func (n *Node) removeChild(child *Node) {
	for i, c := range n.active {
		if c == child {
			n.active = append(n.active[:i], n.active[i+1:]...)
			return
		}
	}
}
