// Package validators 提供字段级验证器
//
// 每个验证器都是无状态的谓词，只暴露 IsValid 能力；
// Validate 把任意验证器的结果统一为 (ok, *core.ErrorEntry)。
package validators

import (
	"fmt"
	"reflect"

	"katydid-common-command/pkg/mutation/core"
)

// Validator 验证器接口
type Validator interface {
	// Name 验证器名称，同时作为错误码
	Name() string

	// IsValid 判断值是否通过验证
	IsValid(value any) bool
}

// MessageFormatter 自定义错误消息
type MessageFormatter interface {
	Message(value any) string
}

// Validate 执行验证器并生成结构化错误
func Validate(v Validator, value any) (bool, *core.ErrorEntry) {
	if v.IsValid(value) {
		return true, nil
	}

	var message string
	if f, ok := v.(MessageFormatter); ok {
		message = f.Message(value)
	} else {
		message = DefaultMessage(v.Name(), value)
	}
	entry := core.NewErrorEntry(v.Name(), message)
	return false, &entry
}

// DefaultMessage 默认错误消息模板
func DefaultMessage(name string, value any) string {
	return fmt.Sprintf("%s failed with input %#v", name, value)
}

// IsAbsent 值是否为缺失标记（nil 或 nil 指针）
// 空字符串、0、false 不是缺失
func IsAbsent(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
