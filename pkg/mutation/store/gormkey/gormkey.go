// Package gormkey 通过 gorm 模型元数据解析主键
//
// 用于 fields.Saved 选项：gorm 模型无需实现 core.PrimaryKeyer 即可判断是否已保存。
package gormkey

import (
	"context"
	"reflect"
	"sync"

	"gorm.io/gorm/schema"

	"katydid-common-command/pkg/mutation/validators"
)

// Resolver gorm 主键解析器
type Resolver struct {
	cache *sync.Map
	namer schema.Namer
}

// New 创建主键解析器
func New() *Resolver {
	return &Resolver{
		cache: &sync.Map{},
		namer: schema.NamingStrategy{},
	}
}

var defaultResolver = New()

// PrimaryKey 使用默认解析器解析主键，可直接作为 fields.Saved 的参数
func PrimaryKey(value any) (any, bool) {
	return defaultResolver.PrimaryKey(value)
}

// KeyFunc 返回绑定到当前解析器的主键解析函数
func (r *Resolver) KeyFunc() validators.KeyFunc {
	return r.PrimaryKey
}

// PrimaryKey 解析主键
// 值不是结构体或模型没有主键时 ok 为 false
func (r *Resolver) PrimaryKey(value any) (key any, ok bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	s, err := schema.Parse(value, r.cache, r.namer)
	if err != nil || s.PrioritizedPrimaryField == nil {
		return nil, false
	}

	key, _ = s.PrioritizedPrimaryField.ValueOf(context.Background(), rv)
	return key, true
}
