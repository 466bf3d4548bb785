// Package signup 用户注册命令
//
// 注册流程：邮箱不在黑名单且未被注册、邮箱不是 aol.com、姓名至少两段，
// 验证通过后哈希密码并保存用户，需要时再执行 SendWelcomeEmail。
package signup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"katydid-common-command/pkg/mutation"
	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/fields"
)

// Name 命令名称
const Name = "UserSignup"

// 业务错误码
const (
	CodeEmailExists  = "email_exists"
	CodeInvalidEmail = "invalid_email"
	CodeNeedFullName = "need_full_name"
)

// User 用户模型
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255" json:"email"`
	Name         string `gorm:"size:255" json:"name"`
	PasswordHash string `json:"-"`
	WelcomeEmail bool   `json:"welcome_email"`
}

// Blocklist 禁止注册的邮箱集合
type Blocklist interface {
	Contains(ctx context.Context, email string) (bool, error)
}

// StaticBlocklist 内存黑名单
type StaticBlocklist map[string]struct{}

// NewStaticBlocklist 创建内存黑名单
func NewStaticBlocklist(emails ...string) StaticBlocklist {
	b := make(StaticBlocklist, len(emails))
	for _, e := range emails {
		b[e] = struct{}{}
	}
	return b
}

// Contains 实现 Blocklist
func (b StaticBlocklist) Contains(_ context.Context, email string) (bool, error) {
	_, ok := b[email]
	return ok, nil
}

// Options 命令依赖
type Options struct {
	// DB 为空时不持久化
	DB *gorm.DB

	// Blocklist 为空时不检查黑名单
	Blocklist Blocklist

	Logger  *zap.Logger
	Plugins []core.Plugin

	// BcryptCost 为 0 时使用 bcrypt.DefaultCost
	BcryptCost int
}

type service struct {
	db        *gorm.DB
	blocklist Blocklist
	logger    *zap.Logger
	cost      int
	welcome   *mutation.Definition

	// seq 未配置数据库时的内存编号
	seq atomic.Uint64
}

func (s *service) nextID() uint {
	return uint(s.seq.Add(1))
}

// New 创建注册命令
func New(opts Options) (*mutation.Definition, error) {
	s := &service{
		db:        opts.DB,
		blocklist: opts.Blocklist,
		logger:    opts.Logger,
		cost:      opts.BcryptCost,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}

	welcome, err := NewWelcome(Options{DB: opts.DB, Logger: s.logger})
	if err != nil {
		return nil, err
	}
	s.welcome = welcome

	return mutation.New(Name).
		Field("email", fields.Email()).
		Field("name", fields.Char(fields.TrimBlank())).
		Field("password", fields.Char(fields.Optional(), fields.AllowBlank())).
		Field("send_welcome_email", fields.Boolean(fields.Optional(), fields.Default(false))).
		Validator("validate_no_existing_user", s.validateNoExistingUser).
		Validator("validate_email", validateEmail).
		Validator("validate_name", validateName).
		Execute(s.execute).
		Plugins(opts.Plugins...).
		Logger(s.logger).
		Build()
}

func (s *service) validateNoExistingUser(ctx context.Context, in *mutation.Instance) error {
	email, err := mutation.Value[string](in, "email")
	if err != nil {
		return err
	}

	if s.blocklist != nil {
		blocked, err := s.blocklist.Contains(ctx, email)
		if err != nil {
			return fmt.Errorf("check blocklist: %w", err)
		}
		if blocked {
			return mutation.Fail(CodeEmailExists)
		}
	}

	if s.db != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if n > 0 {
			return mutation.Fail(CodeEmailExists)
		}
	}

	return nil
}

func validateEmail(_ context.Context, in *mutation.Instance) error {
	email, err := mutation.Value[string](in, "email")
	if err != nil {
		return err
	}
	if strings.Contains(email, "aol.com") {
		return mutation.Fail(CodeInvalidEmail)
	}
	return nil
}

func validateName(_ context.Context, in *mutation.Instance) error {
	name, err := mutation.Value[string](in, "name")
	if err != nil {
		return err
	}
	if len(strings.Fields(name)) < 2 {
		return mutation.Fail(CodeNeedFullName, "Please enter a full name.")
	}
	return nil
}

// execute 哈希密码和写库较慢，以延迟计算返回
func (s *service) execute(_ context.Context, in *mutation.Instance) (any, error) {
	email, err := mutation.Value[string](in, "email")
	if err != nil {
		return nil, err
	}
	name, err := mutation.Value[string](in, "name")
	if err != nil {
		return nil, err
	}
	password, err := mutation.Value[string](in, "password")
	if err != nil {
		return nil, err
	}
	welcome, err := mutation.Value[bool](in, "send_welcome_email")
	if err != nil {
		return nil, err
	}

	user := &User{
		Email: email,
		Name:  strings.TrimSpace(name),
	}

	return mutation.Defer(func(ctx context.Context) (any, error) {
		if err := s.create(ctx, user, password); err != nil {
			return nil, err
		}
		s.logger.Info("user signed up", zap.String("email", user.Email), zap.Uint("id", user.ID))

		if welcome {
			if _, err := s.welcome.Run(ctx, mutation.Inputs{"user": user}, mutation.RaiseOnError()); err != nil {
				return nil, err
			}
		}
		return user, nil
	}), nil
}

func (s *service) create(ctx context.Context, user *User, password string) error {
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if s.db == nil {
		// 未持久化时分配内存编号，保证用户视为已保存
		user.ID = s.nextID()
		return nil
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return mutation.Fail(CodeEmailExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
