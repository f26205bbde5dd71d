package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Supabase SupabaseConfig `mapstructure:"supabase"`
	AI       AIConfig       `mapstructure:"ai"`
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
	Mock     MockConfig     `mapstructure:"mock"`
}

// SupabaseConfig Supabase REST 后端配置
type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`      // 项目地址，如 https://xxx.supabase.co
	AnonKey string        `mapstructure:"anon_key"` // anon 公钥（随请求下发，不是私密凭证）
	Timeout time.Duration `mapstructure:"timeout"`  // 单次请求超时
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai（兼容 Mistral 等）/ azure / ark
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Timeout  time.Duration   `mapstructure:"timeout"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// SessionConfig 会话持久化配置
type SessionConfig struct {
	StorePath string `mapstructure:"store_path"` // 本地存储目录，空则使用系统配置目录
	Remember  bool   `mapstructure:"remember"`   // 登录后是否持久化会话（记住我）
}

// MockConfig 本地 mock 后端配置（开发/测试用）
type MockConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin 模式: debug/release/test
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return errors.New("supabase.url is required")
	}
	if c.Supabase.AnonKey == "" {
		return errors.New("supabase.anon_key is required")
	}
	if c.Supabase.Timeout <= 0 {
		return errors.New("supabase.timeout must be positive")
	}
	return nil
}

// ValidateMock 验证 mock 后端配置
func (c *Config) ValidateMock() error {
	if c.Mock.Port <= 0 || c.Mock.Port > 65535 {
		return errors.New("invalid mock server port")
	}
	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Mock.Mode] {
		return errors.New("invalid mock server mode, must be debug/release/test")
	}
	return nil
}
