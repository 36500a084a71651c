package stats

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ibmesh/go-ibmesh/pkg/lib/log"
)

var logger = log.Logger("core/stats")

// 根节点计数器编号
const (
	rootCounterRuntime = iota
	rootCounterLast
)

// rootClass 根节点类：仅持有运行时长计数器
var rootClass = &Class{
	Name:         "",
	CounterNames: []string{"runtime"},
}

// Context 统计上下文
//
// 持有根节点、目的地与触发器。树结构变更与转储由互斥锁串行化；
// 计数器本身原子更新，不经过该锁。
type Context struct {
	cfg Config
	clk clock.Clock

	mu     sync.Mutex
	root   *Node
	start  time.Time
	dest   destination
	closed bool

	onExit    bool
	timerStop chan struct{}
	timerDone chan struct{}
	sigCh     chan os.Signal
}

// New 创建统计上下文
//
// Dest 为空时统计不启用：返回的上下文上节点分配返回 nil、
// Dump 为空操作，调用方无需区分。
func New(cfg Config) (*Context, error) {
	return NewWithClock(cfg, clock.New())
}

// NewWithClock 使用指定时钟创建统计上下文（定时触发器测试用）
func NewWithClock(cfg Config, clk clock.Clock) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx := &Context{
		cfg:   cfg,
		clk:   clk,
		start: clk.Now(),
	}

	dest, err := openDest(cfg.Dest)
	if err != nil {
		return nil, err
	}
	ctx.dest = dest

	if !ctx.Active() {
		logger.Debug("统计未启用")
		return ctx, nil
	}

	host, _ := os.Hostname()
	ctx.root = newNode(rootClass, fmt.Sprintf("%s:%d", host, os.Getpid()))

	if err := ctx.setTrigger(cfg.Trigger); err != nil {
		_ = dest.close()
		return nil, err
	}

	logger.Info("统计已启用", "dest", cfg.Dest, "trigger", cfg.Trigger, "binary", cfg.Binary)
	return ctx, nil
}

// Active 返回统计是否启用
func (c *Context) Active() bool {
	return c.dest != nil
}

// ==================== 节点管理 ====================

// NewNode 分配计数器节点并挂接到树上
//
// parent 为 nil 时挂接到根节点。统计未启用时返回 nil 节点。
func (c *Context) NewNode(cls *Class, parent *Node, format string, args ...interface{}) (*Node, error) {
	if !c.Active() {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	node := newNode(cls, fmt.Sprintf(format, args...))
	if parent == nil {
		parent = c.root
	}
	node.parent = parent
	parent.active = append(parent.active, node)

	logger.Debug("统计节点已分配", "node", node.String())
	return node, nil
}

// Free 释放计数器节点
//
// 设置了退出转储时，节点转入父节点的非活跃列表而非释放，
// 计数保留到最终转储。nil 节点为空操作。
func (c *Context) Free(node *Node) {
	if node == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(node.active) > 0 {
		logger.Warn("统计节点释放时仍有活跃子节点", "node", node.String(), "count", len(node.active))
	}

	node.parent.removeChild(node)
	if c.onExit {
		node.parent.inactive = append(node.parent.inactive, node)
	}

	logger.Debug("统计节点已释放", "node", node.String())
}

// ==================== 转储 ====================

// Dump 立即转储一次（不含非活跃节点）
func (c *Context) Dump() error {
	return c.dump(false)
}

func (c *Context) dump(inactive bool) error {
	if !c.Active() {
		return nil
	}

	c.mu.Lock()
	c.root.Set(rootCounterRuntime, uint64(c.clk.Since(c.start)/time.Millisecond))

	var buf []byte
	var err error
	if c.cfg.Binary {
		buf, err = serializeBinary(c.root, inactive)
	} else {
		buf, err = serializeText(c.root, inactive)
	}
	c.mu.Unlock()

	if err != nil {
		logger.Warn("统计序列化失败", "error", err)
		return err
	}

	if err := c.dest.write(buf); err != nil {
		logger.Warn("统计转储失败", "error", err)
		return err
	}
	return nil
}

// ==================== 触发器 ====================

func (c *Context) setTrigger(trigger string) error {
	kind, interval, signo, err := parseTrigger(trigger)
	if err != nil {
		return err
	}

	switch kind {
	case triggerNone:

	case triggerExit:
		c.onExit = true

	case triggerTimer:
		c.timerStop = make(chan struct{})
		c.timerDone = make(chan struct{})
		go c.timerLoop(interval)

	case triggerSignal:
		c.sigCh = make(chan os.Signal, 1)
		signal.Notify(c.sigCh, signo)
		go c.signalLoop()
	}
	return nil
}

func (c *Context) timerLoop(interval time.Duration) {
	defer close(c.timerDone)

	ticker := c.clk.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.dump(false)
		case <-c.timerStop:
			return
		}
	}
}

func (c *Context) signalLoop() {
	for range c.sigCh {
		_ = c.dump(false)
	}
}

func (c *Context) unsetTrigger() {
	if c.timerStop != nil {
		close(c.timerStop)
		<-c.timerDone
		c.timerStop = nil
	}

	if c.onExit {
		logger.Debug("执行退出转储")
		_ = c.dump(true)
		c.onExit = false
	}

	if c.sigCh != nil {
		signal.Stop(c.sigCh)
		close(c.sigCh)
		c.sigCh = nil
	}
}

// ==================== 销毁 ====================

// Close 关闭统计上下文
//
// 停止触发器（退出转储在此执行，含非活跃节点）、递归清理节点树，
// 随后关闭目的地。关闭时仍有活跃子节点属于编程错误，记录告警。
func (c *Context) Close() error {
	if !c.Active() {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	c.unsetTrigger()

	c.mu.Lock()
	c.closed = true
	cleanNode(c.root)
	c.mu.Unlock()

	err := c.dest.close()
	logger.Info("统计已关闭")
	return err
}

// cleanNode 递归清理非活跃子树，告警仍活跃的子节点（锁内调用）
func cleanNode(node *Node) {
	if len(node.active) > 0 {
		logger.Warn("统计清理时节点仍有活跃子节点", "node", node.String(), "count", len(node.active))
	}

	for _, child := range node.inactive {
		cleanNode(child)
	}
	node.inactive = nil
}
