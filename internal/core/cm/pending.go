package cm

import (
	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
)

// pendingQueue 准入控制队列
//
// FIFO：入队顺序即资源可用时的通知顺序。
// 所有操作都在接口临界区内执行，自身不加锁。
type pendingQueue struct {
	entries []*interfaces.PendingRequest
}

// push 追加到队尾
func (q *pendingQueue) push(req *interfaces.PendingRequest) {
	q.entries = append(q.entries, req)
}

// popHead 弹出队首；队列为空返回 nil
func (q *pendingQueue) popHead() *interfaces.PendingRequest {
	if len(q.entries) == 0 {
		return nil
	}
	head := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	return head
}

// purge 按队列顺序摘除 owner 拥有的全部条目
//
// 返回被摘除的条目（保持原顺序）；其余条目保持相对顺序。
// 回调由调用方在临界区外执行。
func (q *pendingQueue) purge(owner interfaces.Endpoint) []*interfaces.PendingRequest {
	var removed []*interfaces.PendingRequest
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.Owner == owner {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = nil
	}
	q.entries = kept
	return removed
}

// len 返回队列长度
func (q *pendingQueue) len() int {
	return len(q.entries)
}
