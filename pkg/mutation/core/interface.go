package core

import "context"

// ================================
// 核心接口定义
// ================================

// Command 命令接口
// 职责：提供统一的验证与执行入口
type Command interface {
	// Name 命令名称
	Name() string

	// Run 验证输入并执行业务逻辑
	Run(ctx context.Context, inputs Inputs, opts ...RunOption) (*Result, error)

	// Validate 只验证输入
	Validate(ctx context.Context, inputs Inputs, opts ...RunOption) (*ValidationResult, error)
}

// Awaitable 延迟计算
// execute 可以直接返回结果，也可以返回 Awaitable 交由运行时驱动完成
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// PrimaryKeyer 已持久化对象
type PrimaryKeyer interface {
	// PrimaryKey 返回主键，未保存时返回零值
	PrimaryKey() any
}

// Subject 插件可见的命令实例信息
type Subject interface {
	// Name 命令名称
	Name() string

	// Inputs 原始输入副本
	Inputs() Inputs
}

// Plugin 生命周期插件
// 职责：在验证和执行前后执行附加逻辑
// 钩子返回错误会中止本次调用
type Plugin interface {
	// Name 插件名称
	Name() string

	// Enabled 是否启用
	Enabled() bool

	// BeforeValidate 验证前钩子
	BeforeValidate(ctx context.Context, subject Subject) error

	// AfterValidate 验证后钩子
	AfterValidate(ctx context.Context, subject Subject, errs *ErrorDict) error

	// AfterExecute 执行后钩子
	AfterExecute(ctx context.Context, subject Subject, value any, err error) error
}
