package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector 计数器树的 Prometheus 采集器视图
//
// 每次抓取在树锁内遍历活跃节点，每个计数器导出为一个带
// class/node/counter 标签的 Counter 指标。
type Collector struct {
	ctx  *Context
	desc *prometheus.Desc
}

// 确保实现接口
var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建采集器
func NewCollector(ctx *Context) *Collector {
	return &Collector{
		ctx: ctx,
		desc: prometheus.NewDesc(
			"ibmesh_stats_counter",
			"统计子系统计数器当前值",
			[]string{"class", "node", "counter"},
			nil,
		),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if !c.ctx.Active() {
		return
	}

	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()

	c.collectNode(ch, c.ctx.root)
}

func (c *Collector) collectNode(ch chan<- prometheus.Metric, node *Node) {
	for i, name := range node.cls.CounterNames {
		ch <- prometheus.MustNewConstMetric(
			c.desc,
			prometheus.CounterValue,
			float64(node.Get(i)),
			node.cls.Name, node.name, name,
		)
	}

	for _, child := range node.active {
		c.collectNode(ch, child)
	}
}
