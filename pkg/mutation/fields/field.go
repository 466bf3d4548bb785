// Package fields 定义命令的输入字段
//
// 字段在构造时根据选项一次性推导出验证器列表，之后不可变。
// 验证器顺序固定：Required、NotBlank、SavedObject、InstanceOf（或 Yes），
// 最后是字段自身的附加检查。
package fields

import (
	"reflect"

	"katydid-common-command/pkg/mutation/validators"
)

// Field 字段声明
type Field struct {
	kind       string
	required   bool
	allowBlank bool
	trimBlank  bool
	hasDefault bool
	def        any
	saved      bool
	resolvers  []validators.KeyFunc
	instanceOf []reflect.Type
	permissive bool
	checks     []validators.Validator

	validators []validators.Validator
}

// Option 字段选项
type Option func(*Field)

// Optional 非必填（required=false）
func Optional() Option {
	return func(f *Field) {
		f.required = false
	}
}

// AllowBlank 允许空字符串（blank=true）
func AllowBlank() Option {
	return func(f *Field) {
		f.allowBlank = true
	}
}

// TrimBlank 空白检查前去除首尾空白
func TrimBlank() Option {
	return func(f *Field) {
		f.trimBlank = true
	}
}

// Default 设置默认值，nil 也算已声明默认值
func Default(value any) Option {
	return func(f *Field) {
		f.hasDefault = true
		f.def = value
	}
}

// Saved 要求值是已保存对象，可附加主键解析函数
func Saved(resolvers ...validators.KeyFunc) Option {
	return func(f *Field) {
		f.saved = true
		f.resolvers = append(f.resolvers, resolvers...)
	}
}

// InstanceOf 类型约束，接受一个或多个类型
func InstanceOf(types ...reflect.Type) Option {
	return func(f *Field) {
		f.instanceOf = append(f.instanceOf, types...)
	}
}

// Check 附加自定义谓词
func Check(label string, predicate func(value any) bool) Option {
	return func(f *Field) {
		f.checks = append(f.checks, validators.NewCustom(label, predicate))
	}
}

// Tag 附加 go-playground/validator 标签检查
func Tag(tag string) Option {
	return func(f *Field) {
		f.checks = append(f.checks, validators.NewTag(tag))
	}
}

// With 附加任意验证器
func With(v ...validators.Validator) Option {
	return func(f *Field) {
		f.checks = append(f.checks, v...)
	}
}

// New 创建字段
func New(kind string, opts ...Option) *Field {
	f := &Field{
		kind:     kind,
		required: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.validators = f.buildValidators()
	return f
}

// buildValidators 推导验证器列表
func (f *Field) buildValidators() []validators.Validator {
	list := make([]validators.Validator, 0, 4+len(f.checks))
	if f.required {
		list = append(list, validators.Required{})
	}
	if !f.allowBlank {
		list = append(list, validators.NotBlank{Trim: f.trimBlank})
	}
	if f.saved {
		list = append(list, validators.SavedObject{Resolvers: f.resolvers})
	}
	switch {
	case len(f.instanceOf) > 0:
		list = append(list, validators.NewInstanceOf(f.instanceOf...))
	case f.permissive:
		list = append(list, validators.Yes{})
	}
	return append(list, f.checks...)
}

// Kind 字段类型名称
func (f *Field) Kind() string { return f.kind }

// Required 是否必填
func (f *Field) Required() bool { return f.required }

// AllowsBlank 是否允许空字符串
func (f *Field) AllowsBlank() bool { return f.allowBlank }

// Saved 是否要求已保存对象
func (f *Field) Saved() bool { return f.saved }

// Default 默认值及是否声明
func (f *Field) Default() (any, bool) { return f.def, f.hasDefault }

// Types 类型约束（副本）
func (f *Field) Types() []reflect.Type {
	out := make([]reflect.Type, len(f.instanceOf))
	copy(out, f.instanceOf)
	return out
}

// Validators 验证器列表（副本）
func (f *Field) Validators() []validators.Validator {
	out := make([]validators.Validator, len(f.validators))
	copy(out, f.validators)
	return out
}
