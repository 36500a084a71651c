package stats

import (
	"bytes"
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
)

// ==================== 文本序列化 ====================

// serializeText 将节点树序列化为缩进文本（锁内调用）
func serializeText(root *Node, inactive bool) ([]byte, error) {
	var buf bytes.Buffer
	writeTextNode(&buf, root, 0, inactive)
	return buf.Bytes(), nil
}

func writeTextNode(buf *bytes.Buffer, node *Node, depth int, inactive bool) {
	indent := bytes.Repeat([]byte("  "), depth)

	if node.cls.Name == "" {
		fmt.Fprintf(buf, "%s%s:\n", indent, node.name)
	} else {
		fmt.Fprintf(buf, "%s%s:%s:\n", indent, node.cls.Name, node.name)
	}

	for i, name := range node.cls.CounterNames {
		fmt.Fprintf(buf, "%s  %s: %d\n", indent, name, node.Get(i))
	}

	for _, child := range node.active {
		writeTextNode(buf, child, depth+1, inactive)
	}
	if inactive {
		for _, child := range node.inactive {
			writeTextNode(buf, child, depth+1, inactive)
		}
	}
}

// ==================== 二进制序列化 ====================

// serializeBinary 将节点树序列化为 varint 定长前缀的二进制格式（锁内调用）
//
// 每个节点: 类名、节点名（均为 varint 长度前缀 + 字节）、计数器个数、
// 各计数器值、子节点个数、递归子节点。
func serializeBinary(root *Node, inactive bool) ([]byte, error) {
	var buf bytes.Buffer
	writeBinaryNode(&buf, root, inactive)
	return buf.Bytes(), nil
}

func writeBinaryNode(buf *bytes.Buffer, node *Node, inactive bool) {
	writeBinaryString(buf, node.cls.Name)
	writeBinaryString(buf, node.name)

	buf.Write(varint.ToUvarint(uint64(len(node.cls.CounterNames))))
	for i := range node.cls.CounterNames {
		buf.Write(varint.ToUvarint(node.Get(i)))
	}

	children := node.active
	if inactive {
		children = append(append([]*Node{}, node.active...), node.inactive...)
	}
	buf.Write(varint.ToUvarint(uint64(len(children))))
	for _, child := range children {
		writeBinaryNode(buf, child, inactive)
	}
}

func writeBinaryString(buf *bytes.Buffer, s string) {
	buf.Write(varint.ToUvarint(uint64(len(s))))
	buf.WriteString(s)
}

// DecodedNode 二进制反序列化结果
//
// 计数器名不随二进制格式传输，只携带类名与值序列。
type DecodedNode struct {
	ClassName string
	Name      string
	Counters  []uint64
	Children  []DecodedNode
}

// DecodeBinary 反序列化二进制转储
func DecodeBinary(data []byte) (DecodedNode, error) {
	r := bytes.NewReader(data)
	return readBinaryNode(r)
}

func readBinaryNode(r *bytes.Reader) (DecodedNode, error) {
	var node DecodedNode
	var err error

	if node.ClassName, err = readBinaryString(r); err != nil {
		return node, err
	}
	if node.Name, err = readBinaryString(r); err != nil {
		return node, err
	}

	count, err := varint.ReadUvarint(r)
	if err != nil {
		return node, err
	}
	// 每个计数器至少占 1 字节：个数超出剩余数据即为畸形输入
	if count > uint64(r.Len()) {
		return node, ErrTruncatedDump
	}
	node.Counters = make([]uint64, count)
	for i := range node.Counters {
		if node.Counters[i], err = varint.ReadUvarint(r); err != nil {
			return node, err
		}
	}

	nchildren, err := varint.ReadUvarint(r)
	if err != nil {
		return node, err
	}
	if nchildren > uint64(r.Len()) {
		return node, ErrTruncatedDump
	}
	for i := uint64(0); i < nchildren; i++ {
		child, err := readBinaryNode(r)
		if err != nil {
			return node, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func readBinaryString(r *bytes.Reader) (string, error) {
	n, err := varint.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	if n > uint64(r.Len()) {
		return "", ErrTruncatedDump
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
