package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr        string  `mapstructure:"addr"`
	Width       float64 `mapstructure:"width"`
	Height      float64 `mapstructure:"height"`
	MaxVelocity float64 `mapstructure:"max_velocity"`
	Step        float64 `mapstructure:"step"`
	TickMs      int     `mapstructure:"tick_ms"`
	InputBuffer int     `mapstructure:"input_buffer"`
}

type ClientConfig struct {
	ServerURL        string `mapstructure:"server_url"`
	PlayerID         string `mapstructure:"player_id"`
	Scheme           string `mapstructure:"scheme"`
	ReleasePolicy    string `mapstructure:"release_policy"`
	SuppressRepeat   bool   `mapstructure:"suppress_repeat"`
	ReleaseAfterMs   int    `mapstructure:"release_after_ms"`
	RequestTimeoutMs int    `mapstructure:"request_timeout_ms"`
	Watch            bool   `mapstructure:"watch"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// TickInterval 世界推进间隔
func (s ServerConfig) TickInterval() time.Duration {
	return time.Duration(s.TickMs) * time.Millisecond
}

func (c ClientConfig) ReleaseAfter() time.Duration {
	return time.Duration(c.ReleaseAfterMs) * time.Millisecond
}

func (c ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.width", 1000.0)
	v.SetDefault("server.height", 600.0)
	v.SetDefault("server.max_velocity", 120.0)
	v.SetDefault("server.step", 10.0)
	v.SetDefault("server.tick_ms", 30)
	v.SetDefault("server.input_buffer", 256)

	v.SetDefault("client.server_url", "http://127.0.0.1:3000")
	v.SetDefault("client.player_id", "")
	v.SetDefault("client.scheme", "velocity")
	v.SetDefault("client.release_policy", "any")
	v.SetDefault("client.suppress_repeat", true)
	v.SetDefault("client.release_after_ms", 750)
	v.SetDefault("client.request_timeout_ms", 2000)
	v.SetDefault("client.watch", true)

	v.SetDefault("log.file", "keyrelay.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
}

// Load 读取配置：默认值 < 配置文件 < KEYRELAY_ 环境变量
// path 为空时在当前目录查找 keyrelay.yaml，找不到文件不算错误
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("keyrelay") // 配置文件名称(无扩展名)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KEYRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查枚举型配置与数值范围
func (c *Config) Validate() error {
	switch c.Client.Scheme {
	case "velocity", "step":
	default:
		return fmt.Errorf("client.scheme: unknown value %q", c.Client.Scheme)
	}
	switch c.Client.ReleasePolicy {
	case "any", "all":
	default:
		return fmt.Errorf("client.release_policy: unknown value %q", c.Client.ReleasePolicy)
	}
	if c.Client.ServerURL == "" {
		return errors.New("client.server_url is required")
	}
	if c.Server.TickMs <= 0 {
		return fmt.Errorf("server.tick_ms must be positive, got %d", c.Server.TickMs)
	}
	if c.Server.Width <= 0 || c.Server.Height <= 0 {
		return fmt.Errorf("server world size must be positive, got %.0fx%.0f", c.Server.Width, c.Server.Height)
	}
	return nil
}
