// Copyright 2026 shiwenhan
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Model      ModelConfig      `mapstructure:"model"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	History    HistoryConfig    `mapstructure:"history"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Timeout string `mapstructure:"timeout"` // 如 "120s"，空则默认 120s
}

// ModelConfig 模型配置
type ModelConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Default   string                    `mapstructure:"default"`
}

// ProviderConfig 模型提供商配置（OpenAI 兼容端点）
type ProviderConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	BaseURL   string  `mapstructure:"base_url"`
	Model     string  `mapstructure:"model"`
	MaxTokens int     `mapstructure:"max_tokens"`
	Timeout   string  `mapstructure:"timeout"` // 单次请求超时，如 "60s"
	TopP      float64 `mapstructure:"top_p"`
}

// DatabaseConfig 业务数据库配置（查询执行目标库）
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AgentConfig Agent 行为配置
type AgentConfig struct {
	MaxMessages    int    `mapstructure:"max_messages"`     // Memory 消息上限，<=0 默认 100
	MaxFixAttempts int    `mapstructure:"max_fix_attempts"` // SQL 修复预算（首次执行之外），<0 默认 2
	SampleRows     int    `mapstructure:"sample_rows"`      // 结果分析采样行数，<=0 默认 5
	// ConsolidateMode 多轮 query 合并策略：merge（默认，逐行拼接）| summarize（LLM 摘要）
	ConsolidateMode string `mapstructure:"consolidate_mode"`
	// TableMatchThreshold 表名模糊匹配相似度阈值 [0,1]，<=0 默认 0.5
	TableMatchThreshold float64 `mapstructure:"table_match_threshold"`
	SuggestChart        bool    `mapstructure:"suggest_chart"` // 成功后是否向 LLM 请求图表建议
}

// CatalogConfig 表结构目录配置
type CatalogConfig struct {
	Path string `mapstructure:"path"` // catalog YAML 路径，空则 configs/catalog.yaml
}

// HistoryConfig 会话历史存储配置
type HistoryConfig struct {
	Type     string `mapstructure:"type"` // file | redis
	Dir      string `mapstructure:"dir"`  // type=file 时的目录
	Addr     string `mapstructure:"addr"` // type=redis 时的地址
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
	Port   int  `mapstructure:"port"`
}

// RateLimitsConfig LLM Provider 限流配置
type RateLimitsConfig struct {
	LLM map[string]LLMRateLimitConfig `mapstructure:"llm"`
}

// LLMRateLimitConfig 单个 LLM Provider 的限流配置
type LLMRateLimitConfig struct {
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	Burst             int     `mapstructure:"burst"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	replaceEnvVars(&config)

	return &config, nil
}

// LoadDefault 加载默认配置（configs/config.yaml）
func LoadDefault() (*Config, error) {
	return LoadConfig("configs/config.yaml")
}

// replaceEnvVars 替换配置中 ${VAR} 形式的敏感值
func replaceEnvVars(config *Config) {
	for name, provider := range config.Model.Providers {
		provider.APIKey = expandEnv(provider.APIKey)
		config.Model.Providers[name] = provider
	}
	config.Database.DSN = expandEnv(config.Database.DSN)
	config.History.Password = expandEnv(config.History.Password)
}

func expandEnv(value string) string {
	if !strings.HasPrefix(value, "${") {
		return value
	}
	envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return value
}
