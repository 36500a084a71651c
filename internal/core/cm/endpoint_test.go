package cm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// newTestIface 创建测试接口上下文
func newTestIface(t *testing.T, maxOutstanding int) (*Iface, *fakeClient) {
	t.Helper()
	client := newFakeClient()
	iface, err := NewIface(client, nil, DefaultConfig().WithMaxOutstanding(maxOutstanding))
	require.NoError(t, err)
	return iface, client
}

// newTestEndpoint 创建测试端点
func newTestEndpoint(t *testing.T, iface *Iface, lid uint16, svc types.ServiceID) interfaces.Endpoint {
	t.Helper()
	var gid types.GID
	gid[0] = byte(lid)
	ep, err := iface.NewEndpoint(types.FabricAddress{GID: gid, LID: lid}, svc)
	require.NoError(t, err)
	return ep
}

// complete 通过完成事件释放最早提交的第 n 个请求
func complete(iface *Iface, client *fakeClient, n int) {
	iface.HandleCompletion(interfaces.CompletionEvent{
		RequestID: client.submitted[n].id,
		ServiceID: client.submitted[n].svc,
	})
}

// TestEndpoint_Send 测试基本派发
func TestEndpoint_Send(t *testing.T) {
	iface, client := newTestIface(t, 4)
	ep := newTestEndpoint(t, iface, 9, 0x1234)

	n, err := ep.Send(3, packString("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 1, iface.Outstanding())

	// 提交留痕：帧 = 头部 + 载荷
	last := client.lastSubmitted()
	assert.Equal(t, types.ServiceID(0x1234), last.svc)
	require.Len(t, last.private, FrameHeaderSize+5)
	id, payload, err := DecodeFrame(last.private)
	require.NoError(t, err)
	assert.Equal(t, types.AMID(3), id)
	assert.Equal(t, []byte("hello"), payload)

	// 路径随请求提交
	assert.True(t, last.path.Reversible)
	assert.Equal(t, uint16(9), last.path.DLID)

	t.Log("✅ 派发构帧、解析路径并注册句柄")
}

// TestEndpoint_Send_InvalidAMID 测试非法消息 ID 的契约违规
func TestEndpoint_Send_InvalidAMID(t *testing.T) {
	iface, _ := newTestIface(t, 4)
	ep := newTestEndpoint(t, iface, 1, 1)

	assert.Panics(t, func() {
		_, _ = ep.Send(types.AMIDMax, packString("x"))
	})

	t.Log("✅ 非法 AMID 触发契约违规")
}

// TestEndpoint_Send_NoResource 测试槽位耗尽场景
//
// max_outstanding = 2：前两次派发成功占满槽位，第三次返回资源不足。
func TestEndpoint_Send_NoResource(t *testing.T) {
	iface, _ := newTestIface(t, 2)
	ep := newTestEndpoint(t, iface, 2, 2)

	n, err := ep.Send(1, packString("one"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ep.Send(1, packString("four"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = ep.Send(1, packString("third"))
	assert.ErrorIs(t, err, ErrNoResource)
	assert.Equal(t, 2, iface.Outstanding())

	t.Log("✅ 槽位耗尽返回 NoResource")
}

// TestEndpoint_Send_SubmitError 测试提交失败时的资源回收
func TestEndpoint_Send_SubmitError(t *testing.T) {
	iface, client := newTestIface(t, 2)
	ep := newTestEndpoint(t, iface, 2, 2)

	client.submitErr = assert.AnError
	_, err := ep.Send(0, packString("x"))
	assert.ErrorIs(t, err, ErrIO)

	// 失败尝试分配的句柄已被销毁，注册表不变
	assert.Equal(t, 1, client.destroyedCount())
	assert.Equal(t, 0, iface.Outstanding())

	t.Log("✅ 提交失败先回收 fabric 侧资源")
}

// TestEndpoint_Send_CreateError 测试句柄分配失败
func TestEndpoint_Send_CreateError(t *testing.T) {
	iface, client := newTestIface(t, 2)
	ep := newTestEndpoint(t, iface, 2, 2)

	client.createErr = assert.AnError
	_, err := ep.Send(0, packString("x"))
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, 0, iface.Outstanding())

	t.Log("✅ 句柄分配失败映射为 IO 错误")
}

// TestEndpoint_PendingAdd_Enqueue 测试槽位占满时入队
//
// outstanding == max 时入队并返回成功（而非 Busy），队列长度 +1。
func TestEndpoint_PendingAdd_Enqueue(t *testing.T) {
	iface, _ := newTestIface(t, 2)
	ep := newTestEndpoint(t, iface, 2, 2)

	_, err := ep.Send(0, packString("a"))
	require.NoError(t, err)
	_, err = ep.Send(0, packString("b"))
	require.NoError(t, err)
	_, err = ep.Send(0, packString("c"))
	require.ErrorIs(t, err, ErrNoResource)

	req := &interfaces.PendingRequest{Callback: func(*interfaces.PendingRequest) {}}
	require.NoError(t, ep.PendingAdd(req))
	assert.Equal(t, 1, iface.PendingLen())
	assert.Equal(t, ep, req.Owner)

	t.Log("✅ 槽位占满时入队成功")
}

// TestEndpoint_PendingAdd_Busy 测试重检分支
//
// 第三次派发失败与 PendingAdd 之间有完成事件释放了槽位：
// PendingAdd 观察到空闲槽位，返回 Busy 且不触碰队列。
func TestEndpoint_PendingAdd_Busy(t *testing.T) {
	iface, client := newTestIface(t, 2)
	ep := newTestEndpoint(t, iface, 2, 2)

	_, err := ep.Send(0, packString("a"))
	require.NoError(t, err)
	_, err = ep.Send(0, packString("b"))
	require.NoError(t, err)
	_, err = ep.Send(0, packString("c"))
	require.ErrorIs(t, err, ErrNoResource)

	// 完成事件释放一个槽位
	complete(iface, client, 0)
	require.Equal(t, 1, iface.Outstanding())

	req := &interfaces.PendingRequest{Callback: func(*interfaces.PendingRequest) {}}
	err = ep.PendingAdd(req)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 0, iface.PendingLen())
	assert.Nil(t, req.Owner)

	t.Log("✅ 槽位空闲时返回 Busy 且不入队")
}

// TestIface_DrainFIFO 测试驱动顺序
//
// 队列 [r1(e1), r2(e2), r3(e1)]：单个槽位释放先驱动 r1。
func TestIface_DrainFIFO(t *testing.T) {
	iface, client := newTestIface(t, 1)
	e1 := newTestEndpoint(t, iface, 1, 1)
	e2 := newTestEndpoint(t, iface, 2, 2)

	_, err := e1.Send(0, packString("x"))
	require.NoError(t, err)

	var order []string
	mk := func(name string) *interfaces.PendingRequest {
		return &interfaces.PendingRequest{Callback: func(*interfaces.PendingRequest) {
			order = append(order, name)
		}}
	}

	require.NoError(t, e1.PendingAdd(mk("r1")))
	require.NoError(t, e2.PendingAdd(mk("r2")))
	require.NoError(t, e1.PendingAdd(mk("r3")))
	require.Equal(t, 3, iface.PendingLen())

	// 释放一个槽位：只驱动队首 r1
	complete(iface, client, 0)
	assert.Equal(t, []string{"r1"}, order)
	assert.Equal(t, 2, iface.PendingLen())

	t.Log("✅ 驱动严格 FIFO，一个槽位通知一个条目")
}

// TestIface_DrainAfterRejection 测试拒绝事件同样驱动队列
func TestIface_DrainAfterRejection(t *testing.T) {
	iface, client := newTestIface(t, 1)
	ep := newTestEndpoint(t, iface, 1, 1)

	_, err := ep.Send(0, packString("x"))
	require.NoError(t, err)

	drained := false
	require.NoError(t, ep.PendingAdd(&interfaces.PendingRequest{
		Callback: func(*interfaces.PendingRequest) { drained = true },
	}))

	iface.HandleCompletion(interfaces.CompletionEvent{
		RequestID: client.submitted[0].id,
		Err:       assert.AnError,
	})

	assert.True(t, drained)
	assert.Equal(t, 0, iface.Outstanding())

	t.Log("✅ 拒绝事件与完成事件同样释放槽位并驱动")
}

// TestEndpoint_PendingPurge 测试选择性清除
//
// 只摘除目标端点的条目，保持其余条目的相对顺序，回调逐条调用。
func TestEndpoint_PendingPurge(t *testing.T) {
	iface, _ := newTestIface(t, 1)
	e1 := newTestEndpoint(t, iface, 1, 1)
	e2 := newTestEndpoint(t, iface, 2, 2)

	_, err := e1.Send(0, packString("x"))
	require.NoError(t, err)

	mk := func() *interfaces.PendingRequest {
		return &interfaces.PendingRequest{Callback: func(*interfaces.PendingRequest) {}}
	}
	r1, r2, r3 := mk(), mk(), mk()
	require.NoError(t, e1.PendingAdd(r1))
	require.NoError(t, e2.PendingAdd(r2))
	require.NoError(t, e1.PendingAdd(r3))

	var purged []*interfaces.PendingRequest
	e1.PendingPurge(func(req *interfaces.PendingRequest) {
		purged = append(purged, req)
	})

	// e1 的条目按原顺序清除，e2 的条目保留
	assert.Equal(t, []*interfaces.PendingRequest{r1, r3}, purged)
	assert.Equal(t, 1, iface.PendingLen())

	// 清除不触碰在途注册表
	assert.Equal(t, 1, iface.Outstanding())

	t.Log("✅ purge 精确、保序且不触碰注册表")
}

// TestEndpoint_PendingPurge_Foreign 测试不相关端点的清除
func TestEndpoint_PendingPurge_Foreign(t *testing.T) {
	iface, _ := newTestIface(t, 1)
	e1 := newTestEndpoint(t, iface, 1, 1)
	e2 := newTestEndpoint(t, iface, 2, 2)

	_, err := e1.Send(0, packString("x"))
	require.NoError(t, err)
	require.NoError(t, e1.PendingAdd(&interfaces.PendingRequest{
		Callback: func(*interfaces.PendingRequest) {},
	}))

	count := 0
	e2.PendingPurge(func(*interfaces.PendingRequest) { count++ })
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, iface.PendingLen())

	t.Log("✅ 无匹配条目时队列不变")
}

// TestEndpoint_Flush 测试冲刷语义
func TestEndpoint_Flush(t *testing.T) {
	iface, client := newTestIface(t, 2)
	ep := newTestEndpoint(t, iface, 1, 1)

	// 无在途工作：立即完成
	require.NoError(t, ep.Flush())

	_, err := ep.Send(0, packString("x"))
	require.NoError(t, err)
	assert.ErrorIs(t, ep.Flush(), ErrInProgress)

	complete(iface, client, 0)
	require.NoError(t, ep.Flush())

	t.Log("✅ flush 当且仅当注册表为空时完成")
}

// TestEndpoint_Close 测试端点关闭清除排队条目
func TestEndpoint_Close(t *testing.T) {
	iface, _ := newTestIface(t, 1)
	ep := newTestEndpoint(t, iface, 1, 1)

	_, err := ep.Send(0, packString("x"))
	require.NoError(t, err)
	require.NoError(t, ep.PendingAdd(&interfaces.PendingRequest{
		Callback: func(*interfaces.PendingRequest) {},
	}))

	require.NoError(t, ep.Close())
	assert.Equal(t, 0, iface.PendingLen())

	// 在途请求独立于端点生命周期
	assert.Equal(t, 1, iface.Outstanding())

	t.Log("✅ 关闭清除排队条目，在途请求不受影响")
}

// TestIface_OutstandingInvariant 测试计数不变式
//
// 任意 send/完成序列下 0 ≤ outstanding ≤ max 恒成立。
func TestIface_OutstandingInvariant(t *testing.T) {
	iface, client := newTestIface(t, 3)
	ep := newTestEndpoint(t, iface, 1, 1)

	check := func() {
		n := iface.Outstanding()
		require.GreaterOrEqual(t, n, 0)
		require.LessOrEqual(t, n, 3)
	}

	completedUpTo := 0
	for round := 0; round < 5; round++ {
		for {
			_, err := ep.Send(0, packString("p"))
			check()
			if err != nil {
				require.ErrorIs(t, err, ErrNoResource)
				break
			}
		}
		// 释放两个槽位
		for k := 0; k < 2; k++ {
			complete(iface, client, completedUpTo)
			completedUpTo++
			check()
		}
	}

	t.Log("✅ 在途计数不变式成立")
}
