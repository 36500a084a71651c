package stats

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
)

// destination 转储目的地
//
// write 接收一次完整转储的序列化结果。
type destination interface {
	write(data []byte) error
	close() error
}

// openDest 按描述打开目的地；空描述返回 nil（统计不启用）
func openDest(dest string) (destination, error) {
	switch {
	case dest == "":
		return nil, nil

	case strings.HasPrefix(dest, "udp:"):
		return openUDPDest(dest[len("udp:"):])

	case strings.HasPrefix(dest, "nats:"):
		return openNATSDest(dest[len("nats:"):])

	case dest == "-":
		return &streamDest{file: os.Stdout}, nil

	default:
		file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDest, err)
		}
		return &streamDest{file: file, needClose: true}, nil
	}
}

// ==================== 流目的地 ====================

// streamDest 文件/标准输出目的地
type streamDest struct {
	file      *os.File
	needClose bool
}

func (d *streamDest) write(data []byte) error {
	_, err := d.file.Write(data)
	return err
}

func (d *streamDest) close() error {
	if !d.needClose {
		return nil
	}
	return d.file.Close()
}

// ==================== UDP 目的地 ====================

// udpDest UDP 数据报客户端目的地
//
// 每次转储作为单个数据报发出，不保证送达。
type udpDest struct {
	conn net.Conn
}

func openUDPDest(spec string) (destination, error) {
	if spec == "" {
		return nil, fmt.Errorf("%w: udp destination needs a host", ErrInvalidDest)
	}

	addr := spec
	if !strings.Contains(spec, ":") {
		addr = fmt.Sprintf("%s:%d", spec, DefaultUDPPort)
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDest, err)
	}
	return &udpDest{conn: conn}, nil
}

func (d *udpDest) write(data []byte) error {
	_, err := d.conn.Write(data)
	return err
}

func (d *udpDest) close() error {
	return d.conn.Close()
}

// ==================== NATS 目的地 ====================

// natsDest NATS 发布者目的地
//
// 描述格式 "nats:url/subject"，每次转储发布一条消息。
type natsDest struct {
	conn    *nats.Conn
	subject string
}

func openNATSDest(spec string) (destination, error) {
	idx := strings.LastIndex(spec, "/")
	if idx <= 0 || idx == len(spec)-1 {
		return nil, fmt.Errorf("%w: nats destination needs url/subject", ErrInvalidDest)
	}

	url, subject := spec[:idx], spec[idx+1:]
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDest, err)
	}
	return &natsDest{conn: conn, subject: subject}, nil
}

func (d *natsDest) write(data []byte) error {
	return d.conn.Publish(d.subject, data)
}

func (d *natsDest) close() error {
	if err := d.conn.Flush(); err != nil {
		d.conn.Close()
		return err
	}
	d.conn.Close()
	return nil
}
