package core

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrValidationFailed 输入验证失败（仅在调用方要求抛出时返回）
	ErrValidationFailed = errors.New("mutation: validation failed")
	// ErrExecuteNotImplemented 命令未提供 execute 实现
	ErrExecuteNotImplemented = errors.New("mutation: execute is not implemented")
	// ErrUnknownField 访问了未声明的字段
	ErrUnknownField = errors.New("mutation: unknown field")
	// ErrFieldType 字段值类型与读取类型不符
	ErrFieldType = errors.New("mutation: field type mismatch")
	// ErrConfigMismatch 合并两个默认行为不同的错误集合
	ErrConfigMismatch = errors.New("mutation: error dict configuration mismatch")
	// ErrDuplicateField 同一命令重复声明字段
	ErrDuplicateField = errors.New("mutation: duplicate field")
	// ErrDuplicateValidator 同一命令重复声明自定义验证器
	ErrDuplicateValidator = errors.New("mutation: duplicate validator")
	// ErrEmptyName 名称为空
	ErrEmptyName = errors.New("mutation: empty name")
)

// CodeUnexpected 自定义验证器出现非业务异常时使用的错误码
const CodeUnexpected = "unexpected_error"

// ErrorEntry 单条验证错误
// 设计原则：值对象
type ErrorEntry struct {
	// Code 错误码（字段验证器为验证器名称，自定义验证器为业务错误码）
	Code string `json:"code"`

	// Message 错误消息
	Message string `json:"message,omitempty"`

	// Err 原始错误（仅非业务异常时存在，不参与序列化）
	Err error `json:"-"`
}

// NewErrorEntry 创建错误条目
func NewErrorEntry(code, message string) ErrorEntry {
	return ErrorEntry{Code: code, Message: message}
}

// FaultEntry 将非业务异常转换为错误条目
func FaultEntry(err error) ErrorEntry {
	return ErrorEntry{Code: CodeUnexpected, Message: err.Error(), Err: err}
}

// String 返回友好的错误信息
func (e ErrorEntry) String() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError 业务验证错误
// 自定义验证器通过返回该错误报告业务失败
type ValidationError struct {
	Code    string
	Message string
}

// NewValidationError 创建业务验证错误，message 可选
func NewValidationError(code string, message ...string) *ValidationError {
	e := &ValidationError{Code: code}
	if len(message) > 0 {
		e.Message = message[0]
	}
	return e
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Entry 转换为错误条目
func (e *ValidationError) Entry() ErrorEntry {
	return ErrorEntry{Code: e.Code, Message: e.Message}
}

// FailedValidationError 验证失败错误，携带完整的错误集合
type FailedValidationError struct {
	Command string
	Errors  *ErrorDict
}

// Error 实现 error 接口
func (e *FailedValidationError) Error() string {
	return fmt.Sprintf("mutation %q: %s", e.Command, NewDefaultFormatter().FormatAll(e.Errors))
}

// Unwrap 支持 errors.Is(err, ErrValidationFailed)
func (e *FailedValidationError) Unwrap() error {
	return ErrValidationFailed
}

// FieldLookupError 字段查找错误
type FieldLookupError struct {
	Command string
	Field   string
}

// Error 实现 error 接口
func (e *FieldLookupError) Error() string {
	return fmt.Sprintf("mutation %q has no field %q", e.Command, e.Field)
}

// Unwrap 支持 errors.Is(err, ErrUnknownField)
func (e *FieldLookupError) Unwrap() error {
	return ErrUnknownField
}
