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

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"dbchat/internal/schema"
)

// Config OpenAI 兼容端点配置
type Config struct {
	Model     string
	APIKey    string
	BaseURL   string // 空则用默认或 OPENAI_BASE_URL 环境变量
	MaxTokens int
	Timeout   time.Duration // 单次请求超时，<=0 默认 60s
}

// OpenAIClient OpenAI 兼容客户端（Qwen/DashScope/Ollama 等共用）
type OpenAIClient struct {
	model   string
	apiKey  string
	baseURL string
	cfg     Config
	client  *resty.Client
}

// NewOpenAIClient 创建 OpenAI 兼容客户端
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
		if envURL := os.Getenv("OPENAI_BASE_URL"); envURL != "" {
			baseURL = envURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)

	return &OpenAIClient{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		cfg:     cfg,
		client:  client,
	}, nil
}

// chat completions 响应结构（只取需要的字段）
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string            `json:"content"`
			ToolCalls []schema.ToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// Ask 发送消息序列，返回纯文本回复
func (c *OpenAIClient) Ask(ctx context.Context, messages []schema.Message, opts Options) (string, error) {
	body, err := c.post(ctx, c.buildRequest(messages, nil, opts))
	if err != nil {
		return "", err
	}
	return body.Choices[0].Message.Content, nil
}

// AskTool 发送消息序列与工具声明，返回文本与工具调用
func (c *OpenAIClient) AskTool(ctx context.Context, messages []schema.Message, tools []ToolDeclaration, opts Options) (string, []schema.ToolCall, error) {
	request := c.buildRequest(messages, tools, opts)
	body, err := c.post(ctx, request)
	if err != nil {
		return "", nil, err
	}
	msg := body.Choices[0].Message
	return msg.Content, msg.ToolCalls, nil
}

// Model 返回模型名称
func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) buildRequest(messages []schema.Message, tools []ToolDeclaration, opts Options) map[string]any {
	request := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	if opts.Temperature > 0 {
		request["temperature"] = opts.Temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	if maxTokens > 0 {
		request["max_tokens"] = maxTokens
	}
	if len(tools) > 0 {
		declared := make([]map[string]any, 0, len(tools))
		for _, tool := range tools {
			declared = append(declared, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        tool.Name,
					"description": tool.Description,
					"parameters":  tool.Parameters,
				},
			})
		}
		request["tools"] = declared
	}
	return request
}

func (c *OpenAIClient) post(ctx context.Context, request map[string]any) (*chatResponse, error) {
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(request).
		Post(c.baseURL + "/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("%w: 调用 API failed: %v", ErrGatewayUnavailable, err)
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: API 返回错误: %s", ErrGatewayUnavailable, response.String())
	}

	var result chatResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: 解析响应failed: %v", ErrGatewayUnavailable, err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: API 没有返回结果", ErrGatewayUnavailable)
	}
	return &result, nil
}
