package core

import (
	"fmt"
	"strings"
)

// ErrorFormatter 错误格式化器接口
type ErrorFormatter interface {
	// Format 格式化单个错误
	Format(key string, entry ErrorEntry) string

	// FormatAll 格式化整个错误集合
	FormatAll(errs *ErrorDict) string
}

// ============================================================================
// 默认格式化器 - 简单格式
// ============================================================================

type defaultFormatter struct{}

// NewDefaultFormatter 创建默认格式化器
func NewDefaultFormatter() ErrorFormatter {
	return defaultFormatter{}
}

// Format 格式化单个错误
func (f defaultFormatter) Format(key string, entry ErrorEntry) string {
	return fmt.Sprintf("%s: %s", key, entry.String())
}

// FormatAll 格式化所有错误，以分号分隔
func (f defaultFormatter) FormatAll(errs *ErrorDict) string {
	return formatAll(f, errs)
}

// ============================================================================
// 详细格式化器 - 包含错误码和消息
// ============================================================================

type detailedFormatter struct{}

// NewDetailedFormatter 创建详细格式化器
func NewDetailedFormatter() ErrorFormatter {
	return detailedFormatter{}
}

// Format 格式化单个错误（包含详细信息）
func (f detailedFormatter) Format(key string, entry ErrorEntry) string {
	if entry.Err != nil {
		return fmt.Sprintf("[%s] %s (code=%s, cause=%v)", key, entry.Message, entry.Code, entry.Err)
	}
	return fmt.Sprintf("[%s] %s (code=%s)", key, entry.Message, entry.Code)
}

// FormatAll 格式化所有错误
func (f detailedFormatter) FormatAll(errs *ErrorDict) string {
	return formatAll(f, errs)
}

func formatAll(f ErrorFormatter, errs *ErrorDict) string {
	if errs == nil || errs.IsEmpty() {
		return "no errors"
	}

	var builder strings.Builder
	keys, data, _ := errs.snapshot()
	for _, key := range keys {
		for _, entry := range data[key] {
			if builder.Len() > 0 {
				builder.WriteString("; ")
			}
			builder.WriteString(f.Format(key, entry))
		}
	}
	return builder.String()
}
