package core

// Inputs 命令的原始输入（关键字参数）
// 不要求覆盖所有字段
type Inputs map[string]any

// Clone 复制输入，避免调用方后续修改影响实例
func (in Inputs) Clone() Inputs {
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Result 命令执行结果
type Result struct {
	// Success 是否执行成功
	Success bool `json:"success"`

	// Value 业务逻辑返回值（失败时为 nil）
	Value any `json:"value"`

	// Errors 验证错误（成功时为 nil）
	Errors *ErrorDict `json:"errors"`
}

// NewSuccessResult 创建成功结果
func NewSuccessResult(value any) *Result {
	return &Result{Success: true, Value: value}
}

// NewFailedResult 创建失败结果
func NewFailedResult(errs *ErrorDict) *Result {
	return &Result{Success: false, Errors: errs}
}

// ValidationResult 仅验证的结果
type ValidationResult struct {
	IsValid bool       `json:"is_valid"`
	Errors  *ErrorDict `json:"errors"`
}

// RunOptions 调用选项
type RunOptions struct {
	// RaiseOnError 验证失败时返回 *FailedValidationError 而不是失败结果
	RaiseOnError bool
}

// RunOption 调用选项函数
type RunOption func(*RunOptions)

// RaiseOnError 验证失败时返回错误
func RaiseOnError() RunOption {
	return func(o *RunOptions) {
		o.RaiseOnError = true
	}
}

// ApplyRunOptions 应用调用选项
func ApplyRunOptions(opts ...RunOption) RunOptions {
	var o RunOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
