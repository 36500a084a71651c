package cm

import (
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// registry 在途请求注册表
//
// 容量受限的请求句柄集合：句柄在派发成功时插入，在完成/拒绝事件
// 或接口销毁时移除。所有操作都在接口临界区内执行，自身不加锁。
// 不变式：0 ≤ count ≤ max 在任何观察点成立。
type registry struct {
	handles []types.RequestID
	max     int
}

// newRegistry 创建容量为 max 的注册表
func newRegistry(max int) *registry {
	return &registry{
		handles: make([]types.RequestID, 0, max),
		max:     max,
	}
}

// full 检查槽位是否耗尽
func (r *registry) full() bool {
	return len(r.handles) >= r.max
}

// count 返回当前在途请求数
func (r *registry) count() int {
	return len(r.handles)
}

// insert 登记一个新句柄
//
// 仅在 full() 为假时调用（由派发路径的准入检查保证）。
func (r *registry) insert(id types.RequestID) {
	r.handles = append(r.handles, id)
}

// remove 摘除一个句柄；句柄不存在返回 false
func (r *registry) remove(id types.RequestID) bool {
	for i, h := range r.handles {
		if h == id {
			last := len(r.handles) - 1
			r.handles[i] = r.handles[last]
			r.handles[last] = types.EmptyRequestID
			r.handles = r.handles[:last]
			return true
		}
	}
	return false
}

// drain 取出并清空全部句柄（仅接口销毁时使用）
func (r *registry) drain() []types.RequestID {
	out := r.handles
	r.handles = make([]types.RequestID, 0, r.max)
	return out
}
