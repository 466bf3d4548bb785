// Package plugin 命令生命周期插件
package plugin

import (
	"context"

	"go.uber.org/zap"

	"katydid-common-command/pkg/mutation/core"
)

// LoggingPlugin 日志插件
// 职责：记录验证和执行过程
// 设计模式：插件模式
type LoggingPlugin struct {
	enabled   bool
	logInputs bool
	logger    Logger
}

var _ core.Plugin = (*LoggingPlugin)(nil)

// Logger 日志接口（依赖倒置）
// args 为交替出现的键值对
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// zapLogger zap 日志适配
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger 把 zap.Logger 适配为插件日志接口
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapLogger{sugar: logger.Sugar()}
}

func (l *zapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *zapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

// NewLoggingPlugin 创建日志插件
func NewLoggingPlugin() *LoggingPlugin {
	return &LoggingPlugin{
		enabled: true,
		logger:  NewZapLogger(zap.L()),
	}
}

// WithLogger 设置日志器
func (p *LoggingPlugin) WithLogger(logger Logger) *LoggingPlugin {
	p.logger = logger
	return p
}

// Name 插件名称
func (p *LoggingPlugin) Name() string {
	return "LoggingPlugin"
}

// Init 初始化插件
func (p *LoggingPlugin) Init(config map[string]any) error {
	if config == nil {
		return nil
	}

	// 读取配置
	if enabled, ok := config["enabled"].(bool); ok {
		p.enabled = enabled
	}
	if logInputs, ok := config["log_inputs"].(bool); ok {
		p.logInputs = logInputs
	}

	return nil
}

// BeforeValidate 验证前钩子
func (p *LoggingPlugin) BeforeValidate(_ context.Context, subject core.Subject) error {
	if !p.enabled {
		return nil
	}

	if p.logInputs {
		p.logger.Info("开始验证", "mutation", subject.Name(), "inputs", subject.Inputs())
	} else {
		p.logger.Info("开始验证", "mutation", subject.Name())
	}
	return nil
}

// AfterValidate 验证后钩子
func (p *LoggingPlugin) AfterValidate(_ context.Context, subject core.Subject, errs *core.ErrorDict) error {
	if !p.enabled {
		return nil
	}

	if errorCount := errs.Count(); errorCount > 0 {
		p.logger.Error("验证失败", "mutation", subject.Name(), "errorCount", errorCount, "keys", errs.Keys())
	} else {
		p.logger.Info("验证成功", "mutation", subject.Name())
	}

	return nil
}

// AfterExecute 执行后钩子
func (p *LoggingPlugin) AfterExecute(_ context.Context, subject core.Subject, _ any, err error) error {
	if !p.enabled {
		return nil
	}

	if err != nil {
		p.logger.Error("执行失败", "mutation", subject.Name(), "error", err)
	} else {
		p.logger.Info("执行成功", "mutation", subject.Name())
	}

	return nil
}

// Enabled 是否启用
func (p *LoggingPlugin) Enabled() bool {
	return p.enabled
}
