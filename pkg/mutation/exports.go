package mutation

import (
	"katydid-common-command/pkg/mutation/async"
	"katydid-common-command/pkg/mutation/core"
)

// ============================================================================
// 导出类型
// ============================================================================

// Inputs 命令输入
type Inputs = core.Inputs

// Result 执行结果
type Result = core.Result

// ValidationResult 验证结果
type ValidationResult = core.ValidationResult

// ============================================================================
// 导出错误相关函数
// ============================================================================

// Fail 创建业务验证错误，供自定义验证器返回
func Fail(code string, message ...string) error {
	return core.NewValidationError(code, message...)
}

// RaiseOnError 验证失败时返回 *core.FailedValidationError
func RaiseOnError() core.RunOption {
	return core.RaiseOnError()
}

// ============================================================================
// 导出异步相关函数
// ============================================================================

// Defer 创建延迟计算，作为 execute 的返回值
func Defer(fn async.Func) core.Awaitable {
	return fn
}
