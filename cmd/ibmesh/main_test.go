package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibmesh/go-ibmesh"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// TestSendWithRetry 测试槽位耗尽时的排队重试循环
//
// 单槽位配置下连续派发多条消息：除首条外每条都会先碰到资源不足，
// 经准入排队（或 ErrBusy 立即重试）后成功。
func TestSendWithRetry(t *testing.T) {
	ctx := context.Background()
	domain, err := ibmesh.Open(ctx, ibmesh.WithMaxOutstanding(1))
	require.NoError(t, err)
	defer domain.Close()

	var delivered atomic.Int64
	require.NoError(t, domain.RegisterService(echoService,
		func(_ []byte, _ types.PathDescriptor) {
			delivered.Add(1)
		}))

	ep, err := domain.NewEndpoint(domain.LocalAddress(), echoService)
	require.NoError(t, err)

	const messages = 8
	for i := 0; i < messages; i++ {
		require.NoError(t, sendWithRetry(ctx, ep, i))
	}

	require.Eventually(t, func() bool {
		return domain.Flush() == nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(messages), delivered.Load())

	t.Log("✅ 排队重试循环派发全部消息")
}
