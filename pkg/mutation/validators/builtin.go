package validators

import (
	"fmt"
	"reflect"
	"strings"

	"katydid-common-command/pkg/mutation/core"
)

// 内置验证器名称
const (
	NameRequired    = "RequiredValidator"
	NameNotBlank    = "NotBlankValidator"
	NameInstanceOf  = "InstanceOfValidator"
	NameSavedObject = "SavedObjectValidator"
	NameCustom      = "CustomValidator"
	NameYes         = "YesValidator"
)

// Required 必填验证器：仅当值为缺失标记时失败
type Required struct{}

func (Required) Name() string { return NameRequired }

func (Required) IsValid(value any) bool {
	return !IsAbsent(value)
}

// NotBlank 非空白验证器：仅当值等于空字符串时失败
type NotBlank struct {
	// Trim 比较前先去除首尾空白
	Trim bool
}

func (NotBlank) Name() string { return NameNotBlank }

func (v NotBlank) IsValid(value any) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	if v.Trim {
		s = strings.TrimSpace(s)
	}
	return s != ""
}

// InstanceOf 类型验证器：值必须可赋值给任一候选类型
// 接口类型按实现关系匹配；缺失值交给 Required 处理
type InstanceOf struct {
	Types []reflect.Type
}

// NewInstanceOf 创建类型验证器
func NewInstanceOf(types ...reflect.Type) InstanceOf {
	return InstanceOf{Types: types}
}

func (InstanceOf) Name() string { return NameInstanceOf }

func (v InstanceOf) IsValid(value any) bool {
	if IsAbsent(value) {
		return true
	}
	vt := reflect.TypeOf(value)
	for _, t := range v.Types {
		if t != nil && vt.AssignableTo(t) {
			return true
		}
	}
	return false
}

// KeyFunc 主键解析函数
// ok 为 false 表示无法从该值解析主键
type KeyFunc func(value any) (key any, ok bool)

// SavedObject 已保存对象验证器：主键缺失或为空时失败
type SavedObject struct {
	Resolvers []KeyFunc
}

func (SavedObject) Name() string { return NameSavedObject }

func (v SavedObject) IsValid(value any) bool {
	if IsAbsent(value) {
		return true
	}
	key, ok := ResolveKey(value, v.Resolvers...)
	if !ok {
		return false
	}
	return !isEmptyKey(key)
}

// ResolveKey 解析主键：先检查 core.PrimaryKeyer，再依次尝试解析函数
func ResolveKey(value any, resolvers ...KeyFunc) (any, bool) {
	if pk, ok := value.(core.PrimaryKeyer); ok {
		return pk.PrimaryKey(), true
	}
	for _, resolve := range resolvers {
		if resolve == nil {
			continue
		}
		if key, ok := resolve(value); ok {
			return key, true
		}
	}
	return nil, false
}

func isEmptyKey(key any) bool {
	if key == nil {
		return true
	}
	return reflect.ValueOf(key).IsZero()
}

// Custom 自定义谓词验证器
type Custom struct {
	// Label 出现在错误消息中的名称（可选）
	Label     string
	Predicate func(value any) bool
}

// NewCustom 创建自定义验证器
func NewCustom(label string, predicate func(value any) bool) Custom {
	return Custom{Label: label, Predicate: predicate}
}

func (Custom) Name() string { return NameCustom }

func (v Custom) IsValid(value any) bool {
	if v.Predicate == nil {
		return true
	}
	return v.Predicate(value)
}

// Message 带标签的错误消息
func (v Custom) Message(value any) string {
	if v.Label == "" {
		return DefaultMessage(NameCustom, value)
	}
	return DefaultMessage(fmt.Sprintf("%s(%s)", NameCustom, v.Label), value)
}

// Yes 放行验证器，供宽松的字段类型使用
type Yes struct{}

func (Yes) Name() string { return NameYes }

func (Yes) IsValid(any) bool { return true }
