package cm

import (
	"errors"
	"sync"

	"github.com/ibmesh/go-ibmesh/pkg/interfaces"
	"github.com/ibmesh/go-ibmesh/pkg/types"
)

// 消息帧布局：固定头部后紧跟载荷
//
//	[0]   AMID（应用消息类型）
//	[1]   载荷长度
//	[2:]  载荷字节
const (
	// FrameHeaderSize 帧头字节数
	FrameHeaderSize = 2

	// MaxPayload 单帧载荷上限
	MaxPayload = types.MaxPrivateData - FrameHeaderSize
)

// ErrFrameTruncated 私有数据短于帧头或声明的载荷长度
var ErrFrameTruncated = errors.New("cm: truncated frame")

// framePool 帧缓冲池
//
// 帧是瞬态的（仅存活于一次派发调用内），池化避免每次派发的堆分配；
// 池未命中时退回到堆分配。
var framePool = sync.Pool{
	New: func() any {
		buf := make([]byte, types.MaxPrivateData)
		return &buf
	},
}

// acquireFrame 从池中取出一块满容量帧缓冲
func acquireFrame() *[]byte {
	return framePool.Get().(*[]byte)
}

// releaseFrame 归还帧缓冲
//
// 成功与失败路径都必须归还。
func releaseFrame(buf *[]byte) {
	framePool.Put(buf)
}

// packFrame 向帧缓冲写入头部并调用打包回调序列化载荷
//
// 返回载荷长度；回调返回的长度越界时打包失败。
func packFrame(buf []byte, id types.AMID, pack interfaces.PackFunc) (int, error) {
	payloadLen := pack(buf[FrameHeaderSize:])
	if payloadLen < 0 || payloadLen > MaxPayload {
		return 0, ErrNoMemory
	}
	buf[0] = byte(id)
	buf[1] = byte(payloadLen)
	return payloadLen, nil
}

// DecodeFrame 解析一块私有数据为 (AMID, 载荷)
//
// 供接收侧（注册在 CM 服务上的本地服务处理器）使用。
func DecodeFrame(private []byte) (types.AMID, []byte, error) {
	if len(private) < FrameHeaderSize {
		return 0, nil, ErrFrameTruncated
	}
	id := types.AMID(private[0])
	length := int(private[1])
	if len(private) < FrameHeaderSize+length {
		return 0, nil, ErrFrameTruncated
	}
	return id, private[FrameHeaderSize : FrameHeaderSize+length], nil
}
