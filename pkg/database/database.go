// Package database 数据库连接
package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"katydid-common-command/pkg/config"
)

// ErrUnsupportedDriver 不支持的数据库驱动
var ErrUnsupportedDriver = errors.New("database: unsupported driver")

// Dialector 根据驱动名称创建 gorm 方言
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// Open 打开数据库连接
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	// TranslateError 将唯一索引冲突等驱动错误转换为 gorm.ErrDuplicatedKey
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	logger.Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate 自动迁移模型
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
