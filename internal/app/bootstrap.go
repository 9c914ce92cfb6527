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

// Package app 进程装配：配置 → 日志、LLM 客户端、执行器、目录、历史存储、会话管理
package app

import (
	"context"
	"fmt"
	"time"

	"dbchat/internal/agent"
	"dbchat/internal/catalog"
	"dbchat/internal/db"
	"dbchat/internal/llm"
	"dbchat/internal/session"
	"dbchat/pkg/config"
	"dbchat/pkg/log"
)

// DefaultCatalogPath 未配置时的目录文件路径
const DefaultCatalogPath = "configs/catalog.yaml"

// Bootstrap 装配完成的进程级依赖
type Bootstrap struct {
	Config   *config.Config
	Logger   *log.Logger
	LLM      llm.Client
	Executor *db.PgExecutor
	Catalog  *catalog.Catalog
	History  session.HistoryStore
	Manager  *session.Manager
}

// NewBootstrap 按配置装配全部依赖；数据库与 Redis 在此建立连接
func NewBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	logger, err := log.NewLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	client, err := NewLLMClientFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn 未配置")
	}
	executor, err := db.NewPgExecutor(ctx, cfg.Database.DSN, cfg.Database.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("初始化查询执行器失败: %w", err)
	}

	catalogPath := cfg.Catalog.Path
	if catalogPath == "" {
		catalogPath = DefaultCatalogPath
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("加载表结构目录失败: %w", err)
	}
	logger.Info("表结构目录已加载", "path", catalogPath, "tables", len(cat.Tables))

	history, err := newHistoryStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := session.Deps{
		LLM:      client,
		Executor: executor,
		Catalog:  cat,
		History:  history,
		Logger:   logger.Logger,
	}
	opts := session.Options{
		MaxMessages:     cfg.Agent.MaxMessages,
		ConsolidateMode: cfg.Agent.ConsolidateMode,
		SQL: agent.SQLAgentConfig{
			MaxFixAttempts:      cfg.Agent.MaxFixAttempts,
			SampleRows:          cfg.Agent.SampleRows,
			TableMatchThreshold: cfg.Agent.TableMatchThreshold,
			SuggestChart:        cfg.Agent.SuggestChart,
		},
	}

	return &Bootstrap{
		Config:   cfg,
		Logger:   logger,
		LLM:      client,
		Executor: executor,
		Catalog:  cat,
		History:  history,
		Manager:  session.NewManager(deps, opts),
	}, nil
}

// NewLLMClientFromConfig 按 model.default 指向的 provider 创建客户端，
// 并套用该 provider 的限流配置
func NewLLMClientFromConfig(cfg *config.Config) (llm.Client, error) {
	name := cfg.Model.Default
	provider, ok := cfg.Model.Providers[name]
	if !ok {
		return nil, fmt.Errorf("model.default %q 未在 providers 中配置", name)
	}

	timeout := time.Duration(0)
	if provider.Timeout != "" {
		d, err := time.ParseDuration(provider.Timeout)
		if err != nil {
			return nil, fmt.Errorf("provider %q timeout 无效: %w", name, err)
		}
		timeout = d
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		Model:     provider.Model,
		APIKey:    provider.APIKey,
		BaseURL:   provider.BaseURL,
		MaxTokens: provider.MaxTokens,
		Timeout:   timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 LLM 客户端失败: %w", err)
	}

	if rl, ok := cfg.RateLimits.LLM[name]; ok && rl.RequestsPerMinute > 0 {
		return llm.NewRateLimitedClient(client, rl.RequestsPerMinute, rl.Burst), nil
	}
	return client, nil
}

// newHistoryStore 按配置创建历史存储；未配置时不持久化
func newHistoryStore(ctx context.Context, cfg *config.Config) (session.HistoryStore, error) {
	switch cfg.History.Type {
	case "file":
		dir := cfg.History.Dir
		if dir == "" {
			dir = "data/history"
		}
		store, err := session.NewFileStore(dir)
		if err != nil {
			return nil, fmt.Errorf("初始化文件历史存储失败: %w", err)
		}
		return store, nil
	case "redis":
		store, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.History.Addr,
			Password: cfg.History.Password,
			DB:       cfg.History.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化 Redis 历史存储失败: %w", err)
		}
		return store, nil
	case "":
		return session.NopStore{}, nil
	default:
		return nil, fmt.Errorf("未知的历史存储类型 %q", cfg.History.Type)
	}
}

// Close 释放持有的连接
func (b *Bootstrap) Close() {
	if b.Executor != nil {
		b.Executor.Close()
	}
	if b.History != nil {
		_ = b.History.Close()
	}
}
