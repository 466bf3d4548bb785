package validators

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// NameTag 标签验证器名称
const NameTag = "TagValidator"

var (
	// defaultValidate 底层验证器实例（go-playground/validator），全局单例
	defaultValidate *validator.Validate
	once            sync.Once
)

// Engine 获取底层验证器实例
// 线程安全，可在多个 goroutine 中并发调用
func Engine() *validator.Validate {
	once.Do(func() {
		defaultValidate = validator.New()
	})
	return defaultValidate
}

// RegisterTag 注册自定义验证标签
func RegisterTag(tag string, fn validator.Func) error {
	return Engine().RegisterValidation(tag, fn)
}

// Tag 使用 go-playground/validator 标签语法验证单个值
// 例如 "email"、"min=3,max=20"；缺失值交给 Required 处理
type Tag struct {
	Tag string
}

// NewTag 创建标签验证器
func NewTag(tag string) Tag {
	return Tag{Tag: tag}
}

func (Tag) Name() string { return NameTag }

func (v Tag) IsValid(value any) bool {
	if IsAbsent(value) || v.Tag == "" {
		return true
	}
	return Engine().Var(value, v.Tag) == nil
}

// Message 带标签的错误消息
func (v Tag) Message(value any) string {
	return DefaultMessage(fmt.Sprintf("%s(%s)", NameTag, v.Tag), value)
}
