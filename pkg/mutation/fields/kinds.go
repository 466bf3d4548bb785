package fields

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// 字段类型名称
const (
	KindObject  = "object"
	KindBoolean = "boolean"
	KindChar    = "char"
	KindDict    = "dict"
	KindDecimal = "decimal"
	KindNumeric = "numeric"
	KindDuck    = "duck"
	KindEmail   = "email"
)

var (
	typeString  = reflect.TypeOf("")
	typeBool    = reflect.TypeOf(false)
	typeDict    = reflect.TypeOf(map[string]any{})
	typeDecimal = reflect.TypeOf(decimal.Decimal{})

	numericTypes = []reflect.Type{
		reflect.TypeOf(int(0)),
		reflect.TypeOf(int8(0)),
		reflect.TypeOf(int16(0)),
		reflect.TypeOf(int32(0)),
		reflect.TypeOf(int64(0)),
		reflect.TypeOf(uint(0)),
		reflect.TypeOf(uint8(0)),
		reflect.TypeOf(uint16(0)),
		reflect.TypeOf(uint32(0)),
		reflect.TypeOf(uint64(0)),
		reflect.TypeOf(float32(0)),
		reflect.TypeOf(float64(0)),
		typeDecimal,
	}
)

// TypeOf 返回 T 的反射类型，T 为接口时返回接口类型本身
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Object 通用字段，未指定类型约束时放行任意值
func Object(opts ...Option) *Field {
	return New(KindObject, prepend(func(f *Field) { f.permissive = true }, opts)...)
}

// Boolean 布尔字段
func Boolean(opts ...Option) *Field {
	return New(KindBoolean, prepend(InstanceOf(typeBool), opts)...)
}

// Char 字符串字段
func Char(opts ...Option) *Field {
	return New(KindChar, prepend(InstanceOf(typeString), opts)...)
}

// Dict 字典字段（map[string]any）
func Dict(opts ...Option) *Field {
	return New(KindDict, prepend(InstanceOf(typeDict), opts)...)
}

// Decimal 定点小数字段（shopspring/decimal）
func Decimal(opts ...Option) *Field {
	return New(KindDecimal, prepend(InstanceOf(typeDecimal), opts)...)
}

// Numeric 数值字段：任意整数、浮点数或 decimal
func Numeric(opts ...Option) *Field {
	return New(KindNumeric, prepend(InstanceOf(numericTypes...), opts)...)
}

// Duck 鸭子类型字段，类型约束由调用方给出
// 接口类型按实现关系匹配；不给类型时等同于 Object
func Duck(types []reflect.Type, opts ...Option) *Field {
	preset := func(f *Field) {
		f.permissive = true
		f.instanceOf = append(f.instanceOf, types...)
	}
	return New(KindDuck, prepend(preset, opts)...)
}

// Email 邮箱字段：字符串 + email 标签检查
func Email(opts ...Option) *Field {
	preset := func(f *Field) {
		InstanceOf(typeString)(f)
		Tag("email")(f)
	}
	return New(KindEmail, prepend(preset, opts)...)
}

func prepend(first Option, rest []Option) []Option {
	out := make([]Option, 0, len(rest)+1)
	out = append(out, first)
	return append(out, rest...)
}
