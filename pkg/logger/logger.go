// Package logger 基于 zap 的日志初始化
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"katydid-common-command/pkg/config"
)

// New 根据配置创建日志记录器
// 配置了文件路径时写入滚动日志文件，否则写标准输出
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), newSink(cfg), zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()), nil
}

// MustNew 创建日志记录器，失败时 panic
func MustNew(cfg config.LogConfig) *zap.Logger {
	l, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

func newSink(cfg config.LogConfig) zapcore.WriteSyncer {
	if cfg.File == "" {
		return zapcore.Lock(os.Stdout)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}
