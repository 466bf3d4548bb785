// Package registry 命令注册表
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"katydid-common-command/pkg/mutation/core"
)

var (
	// ErrDuplicateCommand 命令名称重复
	ErrDuplicateCommand = errors.New("registry: duplicate command")
	// ErrNilCommand 命令为空
	ErrNilCommand = errors.New("registry: nil command")
)

// Registry 命令注册表
// 职责：按名称注册和查找命令
// 设计原则：单一职责、并发安全
type Registry struct {
	commands sync.Map // key: string, value: core.Command
}

// New 创建命令注册表
func New() *Registry {
	return &Registry{}
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default 全局默认注册表
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// Register 注册命令，名称重复时返回 ErrDuplicateCommand
func (r *Registry) Register(cmd core.Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("registry: %w", core.ErrEmptyName)
	}
	if _, loaded := r.commands.LoadOrStore(name, cmd); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	return nil
}

// MustRegister 注册命令，失败时 panic
func (r *Registry) MustRegister(cmds ...core.Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
}

// Get 获取命令
func (r *Registry) Get(name string) (core.Command, bool) {
	cached, ok := r.commands.Load(name)
	if !ok {
		return nil, false
	}
	return cached.(core.Command), true
}

// Names 已注册的命令名称（排序）
func (r *Registry) Names() []string {
	names := make([]string, 0)
	r.commands.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Clear 清空注册表
func (r *Registry) Clear() {
	r.commands.Range(func(key, _ any) bool {
		r.commands.Delete(key)
		return true
	})
}
