package stats

import (
	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// 端点遥测计数器编号
const (
	counterAM = iota
	counterAMBytes
	counterNoResource
	counterPending
	counterFlush
	counterFlushWait
	counterLast
)

// EndpointClass 派发路径遥测节点类
var EndpointClass = &Class{
	Name: "cm_ep",
	CounterNames: []string{
		"am",
		"am_bytes",
		"no_resource",
		"pending",
		"flush",
		"flush_wait",
	},
}

// Recorder 面向派发路径的遥测记录器
//
// 将接口层的遥测事件落到一个计数器节点上。统计未启用时节点为
// nil，所有记录均为空操作。
type Recorder struct {
	node *Node
}

// 确保实现接口
var _ interfaces.TelemetryRecorder = (*Recorder)(nil)

// NewRecorder 创建遥测记录器
//
// 节点挂接到根节点下，name 区分通信域内的多个接口。
func NewRecorder(ctx *Context, name string) (*Recorder, error) {
	node, err := ctx.NewNode(EndpointClass, nil, "%s", name)
	if err != nil {
		return nil, err
	}
	return &Recorder{node: node}, nil
}

// Node 返回底层计数器节点（观测用）
func (r *Recorder) Node() *Node {
	return r.node
}

// RecordSend 记录一次成功派发
func (r *Recorder) RecordSend(_ types.AMID, payloadLen int) {
	r.node.Add(counterAM, 1)
	r.node.Add(counterAMBytes, uint64(payloadLen))
}

// RecordNoResource 记录一次资源不足拒绝
func (r *Recorder) RecordNoResource() {
	r.node.Add(counterNoResource, 1)
}

// RecordPending 记录一次准入排队
func (r *Recorder) RecordPending() {
	r.node.Add(counterPending, 1)
}

// RecordFlush 记录一次冲刷查询
func (r *Recorder) RecordFlush(waited bool) {
	if waited {
		r.node.Add(counterFlushWait, 1)
	} else {
		r.node.Add(counterFlush, 1)
	}
}
