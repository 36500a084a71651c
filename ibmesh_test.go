package ibmesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibmesh/go-ibmesh/internal/core/cm"
	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

const testService types.ServiceID = 0x1001

// openTestDomain 创建并启动回环通信域
func openTestDomain(t *testing.T, opts ...Option) *Domain {
	t.Helper()

	domain, err := Open(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = domain.Close() })
	return domain
}

// packString 写入字符串负载的打包回调
func packString(s string) interfaces.PackFunc {
	return func(buf []byte) int {
		return copy(buf, s)
	}
}

// TestOpen 测试通信域启动与关闭
func TestOpen(t *testing.T) {
	domain, err := Open(context.Background())
	require.NoError(t, err)
	require.NotNil(t, domain.Iface())

	require.NoError(t, domain.Close())
	// 重复关闭幂等
	require.NoError(t, domain.Close())

	t.Log("✅ 通信域启动关闭正常")
}

// TestOpen_InvalidOption 测试无效选项
func TestOpen_InvalidOption(t *testing.T) {
	_, err := New(WithMaxOutstanding(0))
	assert.Error(t, err)

	_, err = New(WithCMClient(nil))
	assert.Error(t, err)

	t.Log("✅ 无效选项被拒绝")
}

// TestDomain_NotStarted 测试未启动的通信域
func TestDomain_NotStarted(t *testing.T) {
	domain, err := New()
	require.NoError(t, err)

	_, err = domain.NewEndpoint(types.FabricAddress{LID: 1}, testService)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = domain.NewIface()
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, domain.Close())

	t.Log("✅ 未启动时派发面不可用")
}

// TestDomain_SendDeliver 测试端到端消息投递
func TestDomain_SendDeliver(t *testing.T) {
	domain := openTestDomain(t)

	var mu sync.Mutex
	var got []string
	require.NoError(t, domain.RegisterService(testService,
		func(private []byte, _ types.PathDescriptor) {
			amID, payload, err := cm.DecodeFrame(private)
			require.NoError(t, err)
			assert.Equal(t, types.AMID(7), amID)

			mu.Lock()
			got = append(got, string(payload))
			mu.Unlock()
		}))

	ep, err := domain.NewEndpoint(domain.LocalAddress(), testService)
	require.NoError(t, err)

	n, err := ep.Send(7, packString("hello fabric"))
	require.NoError(t, err)
	assert.Equal(t, len("hello fabric"), n)

	// 投递异步完成后接口排空
	require.Eventually(t, func() bool {
		return domain.Flush() == nil
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"hello fabric"}, got)

	t.Log("✅ 消息经回环设备投递成功")
}

// TestDomain_UnreachableService 测试目的服务未注册
//
// 拒绝事件与完成事件走同一条排空路径：槽位释放、句柄销毁。
func TestDomain_UnreachableService(t *testing.T) {
	domain := openTestDomain(t)

	ep, err := domain.NewEndpoint(domain.LocalAddress(), 0x9999)
	require.NoError(t, err)

	_, err = ep.Send(1, packString("nobody home"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return domain.Iface().Outstanding() == 0
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, domain.Flush())

	t.Log("✅ 拒绝事件同样释放槽位")
}

// TestDomain_PendingDrain 测试真实异步完成驱动的准入排空
func TestDomain_PendingDrain(t *testing.T) {
	block := make(chan struct{})
	domain := openTestDomain(t, WithMaxOutstanding(1))

	require.NoError(t, domain.RegisterService(testService,
		func(_ []byte, _ types.PathDescriptor) {
			<-block
		}))

	ep, err := domain.NewEndpoint(domain.LocalAddress(), testService)
	require.NoError(t, err)

	// 占满唯一槽位
	_, err = ep.Send(0, packString("first"))
	require.NoError(t, err)

	_, err = ep.Send(0, packString("second"))
	require.ErrorIs(t, err, ErrNoResource)

	// 排队等待槽位，回调里重试派发
	retried := make(chan error, 1)
	require.NoError(t, ep.PendingAdd(&interfaces.PendingRequest{
		Callback: func(*interfaces.PendingRequest) {
			_, err := ep.Send(0, packString("second"))
			retried <- err
		},
	}))
	assert.Equal(t, 1, domain.Iface().PendingLen())

	// 放行首个请求，完成事件按 FIFO 通知队首
	close(block)

	select {
	case err := <-retried:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("等待准入队列排空超时")
	}
	assert.Equal(t, 0, domain.Iface().PendingLen())

	require.Eventually(t, func() bool {
		return domain.Flush() == nil
	}, 5*time.Second, 10*time.Millisecond)

	t.Log("✅ 完成事件驱动准入队列排空")
}

// TestDomain_SendWithSlowDelivery 测试慢投递下的连续派发
//
// 派发在接口临界区内向设备提交；唯一投递协程被慢处理器占住时，
// 后续派发仍须立即返回，完成回调随后驱动排空。
func TestDomain_SendWithSlowDelivery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fabric = cfg.Fabric.WithDeliveryWorkers(1)
	domain := openTestDomain(t, WithConfig(cfg))

	release := make(chan struct{})
	entered := make(chan struct{}, 4)
	require.NoError(t, domain.RegisterService(testService,
		func(_ []byte, _ types.PathDescriptor) {
			entered <- struct{}{}
			<-release
		}))

	ep, err := domain.NewEndpoint(domain.LocalAddress(), testService)
	require.NoError(t, err)

	_, err = ep.Send(0, packString("first"))
	require.NoError(t, err)
	<-entered

	// 投递协程被占住期间再次派发，不得阻塞
	done := make(chan error, 1)
	go func() {
		_, err := ep.Send(0, packString("second"))
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("投递协程繁忙时派发被阻塞")
	}

	close(release)
	require.Eventually(t, func() bool {
		return domain.Flush() == nil
	}, 5*time.Second, 10*time.Millisecond)

	t.Log("✅ 慢投递不阻塞派发路径")
}

// TestDomain_ExtraIface 测试额外接口
func TestDomain_ExtraIface(t *testing.T) {
	domain := openTestDomain(t)

	iface, err := domain.NewIface()
	require.NoError(t, err)

	delivered := make(chan struct{}, 1)
	require.NoError(t, domain.RegisterService(testService,
		func(_ []byte, _ types.PathDescriptor) {
			delivered <- struct{}{}
		}))

	ep, err := iface.NewEndpoint(domain.LocalAddress(), testService)
	require.NoError(t, err)
	_, err = ep.Send(3, packString("via extra iface"))
	require.NoError(t, err)

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("等待额外接口投递超时")
	}

	require.Eventually(t, func() bool {
		return iface.Outstanding() == 0
	}, 5*time.Second, 10*time.Millisecond)

	t.Log("✅ 额外接口独立派发")
}

// TestDomain_WithStats 测试带统计的通信域
func TestDomain_WithStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")
	domain := openTestDomain(t, WithStats(path, "exit"))

	require.NoError(t, domain.RegisterService(testService,
		func(_ []byte, _ types.PathDescriptor) {}))

	ep, err := domain.NewEndpoint(domain.LocalAddress(), testService)
	require.NoError(t, err)
	_, err = ep.Send(1, packString("counted"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return domain.Flush() == nil
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, domain.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "cm_ep:iface:")
	assert.Contains(t, out, "am: 1")

	t.Log("✅ 统计随退出转储落盘")
}

// TestDomain_StatsCollector 测试统计采集器的对外可达性
//
// 启用统计后采集器随启动注册；访问器供调用方接入自建注册表。
func TestDomain_StatsCollector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")
	domain := openTestDomain(t, WithStats(path, ""))

	require.NoError(t, domain.RegisterService(testService,
		func(_ []byte, _ types.PathDescriptor) {}))

	ep, err := domain.NewEndpoint(domain.LocalAddress(), testService)
	require.NoError(t, err)
	_, err = ep.Send(1, packString("metered"))
	require.NoError(t, err)

	collector := domain.StatsCollector()
	require.NotNil(t, collector)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(collector))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	assert.Equal(t, "ibmesh_stats_counter", families[0].GetName())

	require.Eventually(t, func() bool {
		return domain.Flush() == nil
	}, 5*time.Second, 10*time.Millisecond)

	t.Log("✅ 采集器随通信域对外可达")
}

// TestDomain_ExternalClient 测试外部 CM 客户端注入
func TestDomain_ExternalClient(t *testing.T) {
	client := &stubClient{}
	domain := openTestDomain(t, WithCMClient(client))

	assert.ErrorIs(t, domain.RegisterService(testService, nil), ErrNoLoopback)

	ep, err := domain.NewEndpoint(types.FabricAddress{LID: 4}, testService)
	require.NoError(t, err)
	_, err = ep.Send(0, packString("hw"))
	require.NoError(t, err)
	assert.Equal(t, 1, client.submitted)

	// 外部客户端的完成事件由调用方接入
	domain.iface.HandleCompletion(interfaces.CompletionEvent{RequestID: client.lastID})
	assert.Equal(t, 0, domain.Iface().Outstanding())

	t.Log("✅ 外部客户端注入后回环不装配")
}

// stubClient 外部 CM 客户端测试替身
type stubClient struct {
	mu        sync.Mutex
	seq       int
	submitted int
	lastID    types.RequestID
}

var _ interfaces.CMClient = (*stubClient)(nil)

func (c *stubClient) LocalAddress() types.FabricAddress {
	return types.FabricAddress{LID: 99}
}

func (c *stubClient) PortAttrs() types.PortAttrs {
	return types.PortAttrs{LID: 99, PKey: 0xffff, ActiveMTU: types.MTU2048}
}

func (c *stubClient) CreateRequestID() (types.RequestID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.lastID = types.RequestID(fmt.Sprintf("hw-%04d", c.seq))
	return c.lastID, nil
}

func (c *stubClient) SendServiceRequest(_ types.RequestID, _ *interfaces.ServiceRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted++
	return nil
}

func (c *stubClient) DestroyRequestID(types.RequestID) error {
	return nil
}
