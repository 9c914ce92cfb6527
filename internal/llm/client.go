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

// Package llm 定义 LLM 网关边界：无状态的请求/响应能力，供各 Agent 复用。
package llm

import (
	"context"
	"errors"

	"dbchat/internal/schema"
)

// ErrGatewayUnavailable 网关调用失败（网络/鉴权/限流）；调用方不重试，按轮次失败处理
var ErrGatewayUnavailable = errors.New("llm gateway unavailable")

// Options 单次请求选项
type Options struct {
	Temperature float64 // <=0 时使用 provider 默认
	MaxTokens   int
}

// ToolDeclaration 向 LLM 声明的可调用能力
type ToolDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema 形式的参数说明
}

// Client LLM 网关客户端接口
type Client interface {
	// Ask 发送消息序列，返回纯文本回复
	Ask(ctx context.Context, messages []schema.Message, opts Options) (string, error)
	// AskTool 发送消息序列与工具声明，返回文本与工具调用（可能同时存在）
	AskTool(ctx context.Context, messages []schema.Message, tools []ToolDeclaration, opts Options) (string, []schema.ToolCall, error)
	// Model 返回模型名称
	Model() string
}
