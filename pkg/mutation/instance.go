package mutation

import (
	"fmt"

	"katydid-common-command/pkg/mutation/core"
)

// Instance 命令实例
// 每次调用创建一个，持有输入副本，字段值在读取时解析
type Instance struct {
	def    *Definition
	inputs core.Inputs
}

var _ core.Subject = (*Instance)(nil)

// Name 命令名称
func (in *Instance) Name() string {
	return in.def.name
}

// Inputs 原始输入副本
func (in *Instance) Inputs() core.Inputs {
	return in.inputs.Clone()
}

// Get 读取字段值
// 优先使用调用方提供的值，其次是字段默认值，否则为 nil
// 未声明的字段返回 *core.FieldLookupError
func (in *Instance) Get(name string) (any, error) {
	i, ok := in.def.index[name]
	if !ok {
		return nil, &core.FieldLookupError{Command: in.def.name, Field: name}
	}
	return in.resolve(in.def.fields[i]), nil
}

// MustGet 读取字段值，未声明的字段会 panic
func (in *Instance) MustGet(name string) any {
	v, err := in.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Supplied 调用方是否提供了该字段
func (in *Instance) Supplied(name string) bool {
	_, ok := in.inputs[name]
	return ok
}

// String 实现 fmt.Stringer
func (in *Instance) String() string {
	return fmt.Sprintf("<Mutation %q>", in.def.name)
}

func (in *Instance) resolve(f boundField) any {
	if v, ok := in.inputs[f.name]; ok {
		return v
	}
	if def, ok := f.field.Default(); ok {
		return def
	}
	return nil
}

// Value 以类型 T 读取字段值
// 值为 nil 时返回 T 的零值；类型不符时返回 core.ErrFieldType
func Value[T any](in *Instance, name string) (T, error) {
	var zero T

	v, err := in.Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("mutation %q field %q is %T: %w", in.def.name, name, v, core.ErrFieldType)
	}
	return typed, nil
}
