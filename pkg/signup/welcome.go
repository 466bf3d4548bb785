package signup

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"katydid-common-command/pkg/mutation"
	"katydid-common-command/pkg/mutation/fields"
	"katydid-common-command/pkg/mutation/store/gormkey"
)

// WelcomeName 欢迎邮件命令名称
const WelcomeName = "SendWelcomeEmail"

// CodeWelcomeSent 欢迎邮件已发送
const CodeWelcomeSent = "welcome_sent"

// NewWelcome 创建欢迎邮件命令
//
// 输入 user 必须是已保存的 *User（主键由 gorm 模型元数据解析），
// 执行后标记 WelcomeEmail 并写回数据库。
func NewWelcome(opts Options) (*mutation.Definition, error) {
	s := &service{
		db:     opts.DB,
		logger: opts.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	return mutation.New(WelcomeName).
		Field("user", fields.Duck(
			[]reflect.Type{fields.TypeOf[*User]()},
			fields.Saved(gormkey.PrimaryKey),
		)).
		Validator("validate_not_sent", validateNotSent).
		Execute(s.sendWelcome).
		Plugins(opts.Plugins...).
		Logger(s.logger).
		Build()
}

func validateNotSent(_ context.Context, in *mutation.Instance) error {
	user, err := mutation.Value[*User](in, "user")
	if err != nil {
		return err
	}
	if user != nil && user.WelcomeEmail {
		return mutation.Fail(CodeWelcomeSent)
	}
	return nil
}

func (s *service) sendWelcome(ctx context.Context, in *mutation.Instance) (any, error) {
	user, err := mutation.Value[*User](in, "user")
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		if err := s.db.WithContext(ctx).Model(user).Update("welcome_email", true).Error; err != nil {
			return nil, fmt.Errorf("mark welcome email: %w", err)
		}
	}
	user.WelcomeEmail = true

	s.logger.Info("welcome email queued", zap.String("email", user.Email), zap.Uint("id", user.ID))
	return user, nil
}
