package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"katydid-common-command/pkg/mutation"
	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/fields"
	"katydid-common-command/pkg/mutation/plugin"
)

func newCommand(p core.Plugin, execErr error) *mutation.Definition {
	return mutation.New("UserSignup").
		Field("email", fields.Char()).
		Execute(func(context.Context, *mutation.Instance) (any, error) { return "ok", execErr }).
		Plugins(p).
		MustBuild()
}

func TestLoggingPlugin(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)
	p := plugin.NewLoggingPlugin().WithLogger(plugin.NewZapLogger(zap.New(obs)))
	require.NoError(t, p.Init(map[string]any{"log_inputs": true}))

	def := newCommand(p, nil)

	_, err := def.Run(context.Background(), core.Inputs{"email": "a@b.com"})
	require.NoError(t, err)

	messages := make([]string, 0)
	for _, e := range logs.TakeAll() {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{"开始验证", "验证成功", "执行成功"}, messages)

	_, err = def.Run(context.Background(), core.Inputs{})
	require.NoError(t, err)

	failed := logs.FilterMessage("验证失败").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.EqualValues(t, 1, failed[0].ContextMap()["errorCount"])
	assert.Equal(t, "UserSignup", failed[0].ContextMap()["mutation"])
}

func TestLoggingPlugin_ExecuteError(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)
	p := plugin.NewLoggingPlugin().WithLogger(plugin.NewZapLogger(zap.New(obs)))

	errBoom := errors.New("boom")
	_, err := newCommand(p, errBoom).Run(context.Background(), core.Inputs{"email": "a@b.com"})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, logs.FilterMessage("执行失败").Len())
}

func TestLoggingPlugin_Disabled(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	p := plugin.NewLoggingPlugin().WithLogger(plugin.NewZapLogger(zap.New(obs)))
	require.NoError(t, p.Init(map[string]any{"enabled": false}))
	assert.False(t, p.Enabled())

	_, err := newCommand(p, nil).Run(context.Background(), core.Inputs{"email": "a@b.com"})
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

// failingPlugin 钩子失败的插件
type failingPlugin struct {
	*plugin.LoggingPlugin
}

func (failingPlugin) Name() string { return "failing" }

func (failingPlugin) BeforeValidate(context.Context, core.Subject) error {
	return errors.New("denied")
}

func TestPlugin_HookErrorAborts(t *testing.T) {
	var executed bool
	def := mutation.New("Guarded").
		Execute(func(context.Context, *mutation.Instance) (any, error) {
			executed = true
			return nil, nil
		}).
		Plugins(failingPlugin{plugin.NewLoggingPlugin().WithLogger(plugin.NewZapLogger(nil))}).
		MustBuild()

	_, err := def.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin failing before validate hook failed")
	assert.False(t, executed)
}
