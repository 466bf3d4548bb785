package async

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"katydid-common-command/pkg/mutation/core"
)

// Func 函数形式的延迟计算
type Func func(ctx context.Context) (any, error)

// Await 实现 core.Awaitable
func (f Func) Await(ctx context.Context) (any, error) {
	return f(ctx)
}

// Defer 把函数包装为延迟计算，调用 Await 前不会执行
func Defer(fn func(ctx context.Context) (any, error)) core.Awaitable {
	return Func(fn)
}

// Gather 并发等待多个延迟计算，结果按参数顺序返回
// 所有计算都会执行完成，错误合并返回
func Gather(ctx context.Context, aws ...core.Awaitable) ([]any, error) {
	results := make([]any, len(aws))
	errs := make([]error, len(aws))

	var wg conc.WaitGroup
	for i, aw := range aws {
		i, aw := i, aw
		wg.Go(func() {
			results[i], errs[i] = aw.Await(ctx)
		})
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

// Dispatcher 执行分发器
// 职责：把同步返回值和延迟计算统一为阻塞调用
type Dispatcher struct {
	logger *zap.Logger
}

// NewDispatcher 创建执行分发器
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Resolve 解析 execute 的返回值
func (d *Dispatcher) Resolve(ctx context.Context, value any) (any, error) {
	aw, ok := value.(core.Awaitable)
	if !ok {
		return value, nil
	}

	if active := FromContext(ctx); active != nil && active.Running() {
		d.logger.Debug("scheduling context busy, offloading to worker",
			zap.Uint64("loop", active.ID()))
		return d.offload(ctx, aw)
	}

	return NewLoop().RunUntilComplete(ctx, aw)
}

// offload 在独立 worker 的新 Loop 上运行，调用方阻塞等待
// worker 中的 panic 会在调用方 goroutine 上重新抛出
func (d *Dispatcher) offload(ctx context.Context, aw core.Awaitable) (value any, err error) {
	var wg conc.WaitGroup
	wg.Go(func() {
		loop := NewLoop()
		d.logger.Debug("worker loop started", zap.Uint64("loop", loop.ID()))
		value, err = loop.RunUntilComplete(ctx, aw)
	})
	wg.Wait()
	return value, err
}
