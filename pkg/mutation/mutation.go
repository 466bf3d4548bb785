// Package mutation 命令验证与执行引擎
//
// 命令由字段、自定义验证器和业务逻辑组成，通过 Builder 一次性构建为不可变的 Definition。
// 每次 Run/Validate 都会创建新的 Instance，调用之间不共享任何状态。
//
// 生命周期：
//  1. 解析输入并运行每个字段的全部验证器，失败记录在字段名下
//  2. 按声明顺序运行自定义验证器，失败记录在验证器名下
//  3. 错误集合为空时执行业务逻辑，返回值如果是 core.Awaitable 则由异步分发器驱动完成
//
// 使用示例：
//
//	signup := mutation.New("UserSignup").
//		Field("email", fields.Char()).
//		Field("name", fields.Char()).
//		Validator("validate_name", checkFullName).
//		Execute(createUser).
//		MustBuild()
//
//	result, err := signup.Run(ctx, core.Inputs{"email": "a@b.com", "name": "Bob Dylan"})
package mutation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"katydid-common-command/pkg/mutation/async"
	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/fields"
)

// Definition 命令定义
// 构建后不可变，可以被多个 goroutine 并发使用
type Definition struct {
	name       string
	fields     []boundField
	index      map[string]int
	checks     []boundCheck
	execute    ExecuteFunc
	plugins    []core.Plugin
	logger     *zap.Logger
	dispatcher *async.Dispatcher
}

var _ core.Command = (*Definition)(nil)

// Name 命令名称
func (d *Definition) Name() string {
	return d.name
}

// Fields 字段名称，按声明顺序
func (d *Definition) Fields() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.name
	}
	return names
}

// Field 获取字段声明
func (d *Definition) Field(name string) (*fields.Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.fields[i].field, true
}

// Validators 自定义验证器名称，按声明顺序
func (d *Definition) Validators() []string {
	names := make([]string, len(d.checks))
	for i, c := range d.checks {
		names[i] = c.name
	}
	return names
}

// NewInstance 创建命令实例，输入会被复制
func (d *Definition) NewInstance(inputs core.Inputs) *Instance {
	return &Instance{
		def:    d,
		inputs: inputs.Clone(),
	}
}

// Run 验证输入，通过后执行业务逻辑
func (d *Definition) Run(ctx context.Context, inputs core.Inputs, opts ...core.RunOption) (*core.Result, error) {
	o := core.ApplyRunOptions(opts...)
	in := d.NewInstance(inputs)

	errs, err := d.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if !errs.IsEmpty() {
		if o.RaiseOnError {
			return nil, &core.FailedValidationError{Command: d.name, Errors: errs}
		}
		return core.NewFailedResult(errs), nil
	}

	value, execErr := d.run(ctx, in)
	if err := d.afterExecute(ctx, in, value, execErr); err != nil {
		return nil, err
	}
	if execErr != nil {
		return nil, execErr
	}

	return core.NewSuccessResult(value), nil
}

// Validate 只验证输入
func (d *Definition) Validate(ctx context.Context, inputs core.Inputs, opts ...core.RunOption) (*core.ValidationResult, error) {
	o := core.ApplyRunOptions(opts...)
	in := d.NewInstance(inputs)

	errs, err := d.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if !errs.IsEmpty() && o.RaiseOnError {
		return nil, &core.FailedValidationError{Command: d.name, Errors: errs}
	}

	return &core.ValidationResult{IsValid: errs.IsEmpty(), Errors: errs}, nil
}

// validate 验证阶段
func (d *Definition) validate(ctx context.Context, in *Instance) (*core.ErrorDict, error) {
	if err := d.beforeValidate(ctx, in); err != nil {
		return nil, err
	}

	errs := d.check(ctx, in)

	if err := d.afterValidate(ctx, in, errs); err != nil {
		return nil, err
	}
	return errs, nil
}

// run 执行阶段
func (d *Definition) run(ctx context.Context, in *Instance) (any, error) {
	if d.execute == nil {
		return nil, fmt.Errorf("mutation %q: %w", d.name, core.ErrExecuteNotImplemented)
	}

	value, err := d.execute(ctx, in)
	if err != nil {
		return nil, err
	}

	return d.dispatcher.Resolve(ctx, value)
}

// beforeValidate 执行插件验证前钩子
func (d *Definition) beforeValidate(ctx context.Context, in *Instance) error {
	for _, plugin := range d.plugins {
		if !plugin.Enabled() {
			continue
		}
		if err := plugin.BeforeValidate(ctx, in); err != nil {
			return fmt.Errorf("plugin %s before validate hook failed: %w", plugin.Name(), err)
		}
	}
	return nil
}

// afterValidate 执行插件验证后钩子
func (d *Definition) afterValidate(ctx context.Context, in *Instance, errs *core.ErrorDict) error {
	for _, plugin := range d.plugins {
		if !plugin.Enabled() {
			continue
		}
		if err := plugin.AfterValidate(ctx, in, errs); err != nil {
			return fmt.Errorf("plugin %s after validate hook failed: %w", plugin.Name(), err)
		}
	}
	return nil
}

// afterExecute 执行插件执行后钩子
func (d *Definition) afterExecute(ctx context.Context, in *Instance, value any, execErr error) error {
	for _, plugin := range d.plugins {
		if !plugin.Enabled() {
			continue
		}
		if err := plugin.AfterExecute(ctx, in, value, execErr); err != nil {
			return fmt.Errorf("plugin %s after execute hook failed: %w", plugin.Name(), err)
		}
	}
	return nil
}
