package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/validators"
)

// check 运行字段验证器和自定义验证器
//
// 字段验证器全部运行，不短路。
// 自定义验证器返回 *core.ValidationError 时记录业务错误并继续；
// 返回其他错误或 panic 时：尚无任何错误则记录为 unexpected_error 并继续，
// 否则立即停止，返回当前已收集的错误。
func (d *Definition) check(ctx context.Context, in *Instance) *core.ErrorDict {
	errs := core.NewErrorDict()
	hasErrors := false

	for _, f := range d.fields {
		value := in.resolve(f)
		for _, v := range f.validators {
			if ok, entry := validators.Validate(v, value); !ok {
				errs.Append(f.name, *entry)
				hasErrors = true
			}
		}
	}

	for _, c := range d.checks {
		err := guard(ctx, c, in)
		if err == nil {
			continue
		}

		var verr *core.ValidationError
		if errors.As(err, &verr) {
			errs.Append(c.name, verr.Entry())
			hasErrors = true
			continue
		}

		if hasErrors {
			d.logger.Debug("validation aborted on unexpected fault",
				zap.String("validator", c.name), zap.Error(err))
			return errs
		}
		errs.Append(c.name, core.FaultEntry(err))
		hasErrors = true
	}

	return errs
}

// guard 运行自定义验证器，panic 转换为错误
func guard(ctx context.Context, c boundCheck, in *Instance) (err error) {
	var pc panics.Catcher
	pc.Try(func() {
		err = c.fn(ctx, in)
	})
	r := pc.Recovered()
	if r == nil {
		return err
	}
	if cause, ok := r.Value.(error); ok {
		return fmt.Errorf("validator %s panic: %w", c.name, cause)
	}
	return fmt.Errorf("validator %s panic: %v", c.name, r.Value)
}
