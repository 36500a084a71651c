// ibmesh 回环演示程序
//
// 启动一个回环通信域，注册回显服务并派发若干消息，演示派发、
// 准入控制与统计转储的完整链路。配置来自 IBMESH_ 前缀的环境
// 变量，命令行标志可覆盖。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ibmesh/go-ibmesh"
	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/lib/log"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// 回显服务标识
const echoService types.ServiceID = 0x2001

// appConfig 环境变量配置（IBMESH_ 前缀）
type appConfig struct {
	// StatsDest 统计转储目的地
	StatsDest string `envconfig:"STATS_DEST" default:"-"`

	// StatsTrigger 统计转储触发方式
	StatsTrigger string `envconfig:"STATS_TRIGGER" default:"exit"`

	// MaxOutstanding 在途请求槽位上限
	MaxOutstanding int `envconfig:"MAX_OUTSTANDING" default:"4"`

	// Messages 演示消息条数
	Messages int `envconfig:"MESSAGES" default:"16"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ibmesh:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	if err := envconfig.Process("ibmesh", &cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	flag.StringVar(&cfg.StatsDest, "stats-dest", cfg.StatsDest, "统计转储目的地")
	flag.StringVar(&cfg.StatsTrigger, "stats-trigger", cfg.StatsTrigger, "统计转储触发方式")
	flag.IntVar(&cfg.MaxOutstanding, "max-outstanding", cfg.MaxOutstanding, "在途请求槽位上限")
	flag.IntVar(&cfg.Messages, "messages", cfg.Messages, "演示消息条数")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	domain, err := ibmesh.Open(ctx,
		ibmesh.WithMaxOutstanding(cfg.MaxOutstanding),
		ibmesh.WithStats(cfg.StatsDest, cfg.StatsTrigger),
	)
	if err != nil {
		return err
	}
	defer domain.Close()

	if err := domain.RegisterService(echoService, echoHandler); err != nil {
		return err
	}

	ep, err := domain.NewEndpoint(domain.LocalAddress(), echoService)
	if err != nil {
		return err
	}

	for i := 0; i < cfg.Messages; i++ {
		if err := sendWithRetry(ctx, ep, i); err != nil {
			return err
		}
	}

	// 等待接口排空
	for domain.Flush() != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	fmt.Printf("已派发 %d 条消息\n", cfg.Messages)
	return nil
}

// sendWithRetry 派发一条消息，槽位耗尽时排队等待后重试
func sendWithRetry(ctx context.Context, ep interfaces.Endpoint, seq int) error {
	payload := fmt.Sprintf("message %d", seq)
	pack := func(buf []byte) int {
		return copy(buf, payload)
	}

	for {
		_, err := ep.Send(1, pack)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ibmesh.ErrNoResource):
		default:
			return err
		}

		// 等待槽位释放的通知
		notify := make(chan struct{})
		err = ep.PendingAdd(&interfaces.PendingRequest{
			Callback: func(*interfaces.PendingRequest) {
				close(notify)
			},
		})
		if errors.Is(err, ibmesh.ErrBusy) {
			// 槽位在排队前已释放，直接重试
			continue
		}
		if err != nil {
			return err
		}

		select {
		case <-notify:
		case <-ctx.Done():
			ep.PendingPurge(func(*interfaces.PendingRequest) {})
			return ctx.Err()
		}
	}
}

// echoHandler 回显服务处理器：仅打印负载
func echoHandler(private []byte, _ types.PathDescriptor) {
	if len(private) < 2 {
		return
	}
	fmt.Printf("收到: %s\n", private[2:2+int(private[1])])
}
