package cm

import (
	"fmt"
	"sync"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// fakeClient CM 客户端测试替身
//
// 同步记账：句柄顺序分配，提交与销毁全部留痕，可注入失败。
type fakeClient struct {
	mu   sync.Mutex
	port types.PortAttrs

	seq       int
	created   map[types.RequestID]bool
	destroyed []types.RequestID
	submitted []submittedRequest

	createErr error
	submitErr error
}

// submittedRequest 一次提交的留痕（私有数据按值复制）
type submittedRequest struct {
	id      types.RequestID
	svc     types.ServiceID
	path    types.PathDescriptor
	private []byte
}

var _ interfaces.CMClient = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	var gid types.GID
	gid[0] = 0xfe
	gid[15] = 0xaa
	return &fakeClient{
		port: types.PortAttrs{
			GID:        gid,
			LID:        7,
			PKey:       0xffff,
			SL:         3,
			ActiveMTU:  types.MTU1024,
			ActiveRate: types.Rate10Gbps,
		},
		created: make(map[types.RequestID]bool),
	}
}

func (c *fakeClient) LocalAddress() types.FabricAddress {
	return types.FabricAddress{GID: c.port.GID, LID: c.port.LID}
}

func (c *fakeClient) PortAttrs() types.PortAttrs {
	return c.port
}

func (c *fakeClient) CreateRequestID() (types.RequestID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return types.EmptyRequestID, c.createErr
	}
	c.seq++
	id := types.RequestID(fmt.Sprintf("req-%04d", c.seq))
	c.created[id] = true
	return id, nil
}

func (c *fakeClient) SendServiceRequest(id types.RequestID, req *interfaces.ServiceRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return c.submitErr
	}
	c.submitted = append(c.submitted, submittedRequest{
		id:      id,
		svc:     req.ServiceID,
		path:    req.Path,
		private: append([]byte(nil), req.PrivateData...),
	})
	return nil
}

func (c *fakeClient) DestroyRequestID(id types.RequestID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.created[id] {
		return fmt.Errorf("unknown request %s", id)
	}
	delete(c.created, id)
	c.destroyed = append(c.destroyed, id)
	return nil
}

// lastSubmitted 返回最近一次提交的留痕
func (c *fakeClient) lastSubmitted() submittedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted[len(c.submitted)-1]
}

// destroyedCount 返回已销毁句柄数
func (c *fakeClient) destroyedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.destroyed)
}

// packString 返回写入固定字符串的打包回调
func packString(s string) interfaces.PackFunc {
	return func(buf []byte) int {
		return copy(buf, s)
	}
}
