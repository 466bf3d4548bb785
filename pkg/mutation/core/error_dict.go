package core

import (
	"bytes"
	"encoding/json"
	"sync"
)

// ErrorDict 错误集合
// 职责：按键（字段名或验证器名）收集有序的错误条目
// 默认模式下读取不存在的键会插入一个空列表，不会失败
type ErrorDict struct {
	mu     sync.RWMutex
	data   map[string][]ErrorEntry
	keys   []string
	strict bool
}

// ErrorDictOption 错误集合选项
type ErrorDictOption func(*ErrorDict)

// Strict 严格模式：Get 不会为未知键插入空列表
func Strict() ErrorDictOption {
	return func(d *ErrorDict) {
		d.strict = true
	}
}

// NewErrorDict 创建错误集合
func NewErrorDict(opts ...ErrorDictOption) *ErrorDict {
	d := &ErrorDict{
		data: make(map[string][]ErrorEntry, 4),
		keys: make([]string, 0, 4),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get 获取键对应的错误列表，不存在时插入空列表
func (d *ErrorDict) Get(key string) []ErrorEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entries, ok := d.data[key]; ok {
		return cloneEntries(entries)
	}
	if d.strict {
		return nil
	}
	d.insertLocked(key)
	return []ErrorEntry{}
}

// Lookup 获取键对应的错误列表，不插入
func (d *ErrorDict) Lookup(key string) ([]ErrorEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries, ok := d.data[key]
	if !ok {
		return nil, false
	}
	return cloneEntries(entries), true
}

// Has 键下是否有错误
func (d *ErrorDict) Has(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.data[key]) > 0
}

// Append 追加错误
func (d *ErrorDict) Append(key string, entries ...ErrorEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.data[key]; !ok {
		d.insertLocked(key)
	}
	d.data[key] = append(d.data[key], entries...)
}

// Merge 合并两个错误集合，返回新的集合
// 同名键按左侧在前、右侧在后的顺序拼接
func (d *ErrorDict) Merge(other *ErrorDict) (*ErrorDict, error) {
	if other == nil {
		other = NewErrorDict()
	}

	rightKeys, rightData, rightStrict := other.snapshot()
	leftKeys, leftData, leftStrict := d.snapshot()
	if leftStrict != rightStrict {
		return nil, ErrConfigMismatch
	}

	merged := &ErrorDict{
		data:   make(map[string][]ErrorEntry, len(leftKeys)+len(rightKeys)),
		keys:   make([]string, 0, len(leftKeys)+len(rightKeys)),
		strict: leftStrict,
	}
	for _, key := range leftKeys {
		merged.insertLocked(key)
		merged.data[key] = leftData[key]
	}
	for _, key := range rightKeys {
		if _, ok := merged.data[key]; !ok {
			merged.insertLocked(key)
		}
		merged.data[key] = append(merged.data[key], rightData[key]...)
	}
	return merged, nil
}

// IsEmpty 是否没有任何错误
// 只被读取过（空列表）的键不计入
func (d *ErrorDict) IsEmpty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, entries := range d.data {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

// Keys 按插入顺序返回所有键（包括空列表的键）
func (d *ErrorDict) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Count 错误条目总数
func (d *ErrorDict) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, entries := range d.data {
		n += len(entries)
	}
	return n
}

// IsStrict 是否严格模式
func (d *ErrorDict) IsStrict() bool {
	return d.strict
}

// ToMap 转换为普通 map（副本）
func (d *ErrorDict) ToMap() map[string][]ErrorEntry {
	keys, data, _ := d.snapshot()
	m := make(map[string][]ErrorEntry, len(keys))
	for _, key := range keys {
		m[key] = data[key]
	}
	return m
}

// MarshalJSON 按插入顺序输出键
func (d *ErrorDict) MarshalJSON() ([]byte, error) {
	keys, data, _ := d.snapshot()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		entries := data[key]
		if entries == nil {
			entries = []ErrorEntry{}
		}
		v, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *ErrorDict) insertLocked(key string) {
	d.data[key] = []ErrorEntry{}
	d.keys = append(d.keys, key)
}

// snapshot 获取一致的只读副本
func (d *ErrorDict) snapshot() ([]string, map[string][]ErrorEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	data := make(map[string][]ErrorEntry, len(d.data))
	for k, v := range d.data {
		data[k] = cloneEntries(v)
	}
	return keys, data, d.strict
}

func cloneEntries(entries []ErrorEntry) []ErrorEntry {
	out := make([]ErrorEntry, len(entries))
	copy(out, entries)
	return out
}
