package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
log:
  level: debug
  format: console
database:
  driver: postgres
  dsn: host=localhost user=app dbname=app
redis:
  addr: localhost:6379
  db: 2
http:
  addr: ":9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)

	// 未设置的键保留默认值
	assert.Equal(t, "release", cfg.HTTP.Mode)
	assert.Equal(t, "mutation:signup:blocklist", cfg.Redis.BlocklistKey)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "config.json", `{"http": {"addr": ":9000"}}`)
	t.Setenv("MUTATION_HTTP_ADDR", ":9090")
	t.Setenv("MUTATION_LOG_LEVEL", "warn")
	t.Setenv("MUTATION_MUTATION_RAISE_ON_ERROR", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Mutation.RaiseOnError)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "日志级别无效", content: "log:\n  level: verbose\n"},
		{name: "数据库驱动无效", content: "database:\n  driver: oracle\n"},
		{name: "Redis 地址无效", content: "redis:\n  addr: not-an-address\n"},
		{name: "HTTP 模式无效", content: "http:\n  mode: staging\n"},
		{name: "节点号超出范围", content: "http:\n  node_id: 2048\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
