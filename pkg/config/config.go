// Package config 服务配置
//
// 配置来源优先级：环境变量（MUTATION_ 前缀）> 配置文件 > 默认值。
// 环境变量名由配置键转换而来，例如 http.addr 对应 MUTATION_HTTP_ADDR。
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "MUTATION"

// Config 服务配置
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Mutation MutationConfig `mapstructure:"mutation"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`

	// File 日志文件路径，为空时输出到标准输出
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// MutationConfig 命令引擎配置
type MutationConfig struct {
	// RaiseOnError HTTP 调用默认是否以错误形式返回验证失败
	RaiseOnError bool `mapstructure:"raise_on_error"`

	// LogInputs 日志插件是否记录输入
	LogInputs bool `mapstructure:"log_inputs"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=sqlite mysql postgres"`
	DSN         string `mapstructure:"dsn" validate:"required"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// Addr 为空时不使用 Redis
	Addr         string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db" validate:"gte=0,lte=15"`
	BlocklistKey string `mapstructure:"blocklist_key" validate:"required"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`

	// NodeID 请求编号的节点号（0-1023）
	NodeID int64 `mapstructure:"node_id" validate:"gte=0,lte=1023"`
}

// Default 默认配置
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "file::memory:?cache=shared",
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			BlocklistKey: "mutation:signup:blocklist",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
			Mode: "release",
		},
	}
}

// Load 加载配置，path 为空时只使用默认值和环境变量
// 文件格式由扩展名决定（yaml/json/toml）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// setDefaults 注册所有配置键，AutomaticEnv 只对已知键生效
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)

	v.SetDefault("mutation.raise_on_error", d.Mutation.RaiseOnError)
	v.SetDefault("mutation.log_inputs", d.Mutation.LogInputs)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.blocklist_key", d.Redis.BlocklistKey)

	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.mode", d.HTTP.Mode)
	v.SetDefault("http.node_id", d.HTTP.NodeID)
}
