// Package async 驱动异步 execute 的执行
//
// Loop 是单次使用的调度上下文，通过 context.Context 传播。
// Dispatcher 负责把同步值和 core.Awaitable 统一为阻塞调用：
// 当前上下文中没有运行中的 Loop 时在调用方 goroutine 上新建 Loop 运行；
// 已有运行中的 Loop 时无法嵌套，改为在独立 worker goroutine 的新 Loop 上运行并等待。
package async

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"katydid-common-command/pkg/mutation/core"
)

var (
	// ErrLoopRunning Loop 正在运行，不能嵌套启动
	ErrLoopRunning = errors.New("async: loop is already running")
	// ErrLoopClosed Loop 已运行结束，不能复用
	ErrLoopClosed = errors.New("async: loop is closed")
)

var loopSeq atomic.Uint64

type loopKey struct{}

// Loop 调度上下文
type Loop struct {
	id      uint64
	running atomic.Bool
	closed  atomic.Bool
	tasks   conc.WaitGroup
}

// NewLoop 创建调度上下文
func NewLoop() *Loop {
	return &Loop{id: loopSeq.Add(1)}
}

// ID 唯一编号
func (l *Loop) ID() uint64 { return l.id }

// Running 是否正在运行
func (l *Loop) Running() bool { return l.running.Load() }

// Go 在 Loop 上启动后台任务
// RunUntilComplete 返回前会等待所有后台任务结束
func (l *Loop) Go(fn func()) {
	l.tasks.Go(fn)
}

// RunUntilComplete 在当前 goroutine 上驱动 aw 以及 Loop 上的所有任务直到完成
// panic 会在所有任务结束后重新抛出
func (l *Loop) RunUntilComplete(ctx context.Context, aw core.Awaitable) (any, error) {
	if l.closed.Load() {
		return nil, ErrLoopClosed
	}
	if !l.running.CompareAndSwap(false, true) {
		return nil, ErrLoopRunning
	}
	defer func() {
		l.running.Store(false)
		l.closed.Store(true)
	}()

	ctx = WithLoop(ctx, l)

	var (
		value any
		err   error
		pc    panics.Catcher
	)
	pc.Try(func() {
		value, err = aw.Await(ctx)
	})
	l.tasks.Wait()
	pc.Repanic()

	return value, err
}

// WithLoop 把 Loop 绑定到上下文
func WithLoop(ctx context.Context, l *Loop) context.Context {
	return context.WithValue(ctx, loopKey{}, l)
}

// FromContext 获取上下文中的 Loop
func FromContext(ctx context.Context) *Loop {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(loopKey{}).(*Loop)
	return l
}
