package mutation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"katydid-common-command/pkg/mutation/async"
	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/fields"
	"katydid-common-command/pkg/mutation/validators"
)

// CheckFunc 自定义验证器
// 业务失败返回 *core.ValidationError，其他错误或 panic 视为异常
type CheckFunc func(ctx context.Context, in *Instance) error

// ExecuteFunc 业务逻辑
// 可以直接返回结果，也可以返回 core.Awaitable
type ExecuteFunc func(ctx context.Context, in *Instance) (any, error)

// boundField 已注册的字段及其验证器列表
type boundField struct {
	name       string
	field      *fields.Field
	validators []validators.Validator
}

// boundCheck 已注册的自定义验证器
type boundCheck struct {
	name string
	fn   CheckFunc
}

// Builder 命令构建器
// 职责：一次性收集字段、自定义验证器和业务逻辑，构建不可变的 Definition
// 设计模式：建造者模式
type Builder struct {
	name    string
	fields  []boundField
	checks  []boundCheck
	execute ExecuteFunc
	plugins []core.Plugin
	logger  *zap.Logger
	errs    []error
}

// New 创建命令构建器
func New(name string) *Builder {
	return &Builder{
		name:    name,
		fields:  make([]boundField, 0),
		checks:  make([]boundCheck, 0),
		plugins: make([]core.Plugin, 0),
	}
}

// Field 声明字段，按声明顺序验证
func (b *Builder) Field(name string, f *fields.Field) *Builder {
	switch {
	case name == "":
		b.errs = append(b.errs, fmt.Errorf("field: %w", core.ErrEmptyName))
	case f == nil:
		b.errs = append(b.errs, fmt.Errorf("field %q is nil", name))
	case b.hasField(name):
		b.errs = append(b.errs, fmt.Errorf("field %q: %w", name, core.ErrDuplicateField))
	default:
		b.fields = append(b.fields, boundField{name: name, field: f, validators: f.Validators()})
	}
	return b
}

// Validator 声明自定义验证器，按声明顺序执行
func (b *Builder) Validator(name string, fn CheckFunc) *Builder {
	switch {
	case name == "":
		b.errs = append(b.errs, fmt.Errorf("validator: %w", core.ErrEmptyName))
	case fn == nil:
		b.errs = append(b.errs, fmt.Errorf("validator %q is nil", name))
	case b.hasCheck(name):
		b.errs = append(b.errs, fmt.Errorf("validator %q: %w", name, core.ErrDuplicateValidator))
	default:
		b.checks = append(b.checks, boundCheck{name: name, fn: fn})
	}
	return b
}

// Execute 设置业务逻辑
func (b *Builder) Execute(fn ExecuteFunc) *Builder {
	b.execute = fn
	return b
}

// Plugins 添加生命周期插件
func (b *Builder) Plugins(plugins ...core.Plugin) *Builder {
	for _, p := range plugins {
		if p != nil {
			b.plugins = append(b.plugins, p)
		}
	}
	return b
}

// Logger 设置日志记录器
func (b *Builder) Logger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build 构建命令定义
func (b *Builder) Build() (*Definition, error) {
	errs := b.errs
	if b.name == "" {
		errs = append([]error{fmt.Errorf("mutation: %w", core.ErrEmptyName)}, errs...)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("build mutation %q: %w", b.name, errors.Join(errs...))
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("mutation", b.name))

	d := &Definition{
		name:       b.name,
		fields:     make([]boundField, len(b.fields)),
		index:      make(map[string]int, len(b.fields)),
		checks:     make([]boundCheck, len(b.checks)),
		execute:    b.execute,
		plugins:    make([]core.Plugin, len(b.plugins)),
		logger:     logger,
		dispatcher: async.NewDispatcher(logger),
	}
	copy(d.fields, b.fields)
	copy(d.checks, b.checks)
	copy(d.plugins, b.plugins)
	for i, f := range d.fields {
		d.index[f.name] = i
	}

	return d, nil
}

// MustBuild 构建命令定义，失败时 panic
func (b *Builder) MustBuild() *Definition {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func (b *Builder) hasField(name string) bool {
	for _, f := range b.fields {
		if f.name == name {
			return true
		}
	}
	return false
}

func (b *Builder) hasCheck(name string) bool {
	for _, c := range b.checks {
		if c.name == name {
			return true
		}
	}
	return false
}
