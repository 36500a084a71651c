package interfaces

import "github.com/ibmesh/go-ibmesh/pkg/types"

// TelemetryRecorder 遥测记录面
//
// 全部为 fire-and-forget 计数调用：无返回值，对调用方永不可观察地
// 失败。传输端点只通过这个不透明接口接触统计子系统。
type TelemetryRecorder interface {
	// RecordSend 记录一次成功派发（操作类型 + 发送字节数）
	RecordSend(id types.AMID, payloadLen int)

	// RecordNoResource 记录一次槽位耗尽
	RecordNoResource()

	// RecordPending 记录一次准入排队
	RecordPending()

	// RecordFlush 记录一次冲刷（waited 区分「立即完成」与「需等待」）
	RecordFlush(waited bool)
}

// NopTelemetry 空遥测实现
//
// 未接入统计子系统时使用。
type NopTelemetry struct{}

var _ TelemetryRecorder = NopTelemetry{}

// RecordSend 空实现
func (NopTelemetry) RecordSend(types.AMID, int) {}

// RecordNoResource 空实现
func (NopTelemetry) RecordNoResource() {}

// RecordPending 空实现
func (NopTelemetry) RecordPending() {}

// RecordFlush 空实现
func (NopTelemetry) RecordFlush(bool) {}
