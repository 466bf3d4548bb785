// Package runid 生成调用编号
//
// 编号结构（Snowflake 变体）：时间戳(41位) | 节点(10位) | 序列号(12位)
// 同一节点内单调递增，可以从编号解析出生成时间。
package runid

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	// Epoch 起始时间戳 (2024-01-01 00:00:00 UTC)，毫秒
	Epoch int64 = 1704067200000

	NodeBits     = 10
	SequenceBits = 12

	MaxNode     = -1 ^ (-1 << NodeBits)     // 1023
	MaxSequence = -1 ^ (-1 << SequenceBits) // 4095

	nodeShift      = SequenceBits
	timestampShift = SequenceBits + NodeBits
)

var (
	// ErrInvalidNode 节点编号超出范围
	ErrInvalidNode = errors.New("runid: invalid node")
	// ErrClockMovedBackwards 时钟回拨
	ErrClockMovedBackwards = errors.New("runid: clock moved backwards")
)

// Generator 编号生成器，并发安全
type Generator struct {
	mu       sync.Mutex
	node     int64
	lastMs   int64
	sequence int64
	now      func() int64
}

// New 创建生成器
func New(node int64) (*Generator, error) {
	if node < 0 || node > MaxNode {
		return nil, fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidNode, node, MaxNode)
	}
	return &Generator{
		node:     node,
		lastMs:   -1,
		sequence: -1,
		now:      func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// Next 生成下一个编号
func (g *Generator) Next() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now()
	if ms < g.lastMs {
		return 0, fmt.Errorf("%w: drift of %d ms", ErrClockMovedBackwards, g.lastMs-ms)
	}

	if ms == g.lastMs {
		if g.sequence >= MaxSequence {
			// 当前毫秒序列号耗尽
			for ms <= g.lastMs {
				time.Sleep(100 * time.Microsecond)
				ms = g.now()
			}
			g.sequence = 0
		} else {
			g.sequence++
		}
	} else {
		g.sequence = 0
	}
	g.lastMs = ms

	return (ms-Epoch)<<timestampShift | g.node<<nodeShift | g.sequence, nil
}

// NextString 生成下一个编号的十进制字符串
func (g *Generator) NextString() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

// Info 编号解析结果
type Info struct {
	Time     time.Time
	Node     int64
	Sequence int64
}

// Parse 解析编号
func Parse(id int64) Info {
	return Info{
		Time:     time.UnixMilli((id >> timestampShift) + Epoch),
		Node:     (id >> nodeShift) & MaxNode,
		Sequence: id & MaxSequence,
	}
}
