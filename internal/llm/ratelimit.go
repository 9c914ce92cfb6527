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
	"fmt"

	"golang.org/x/time/rate"

	"dbchat/internal/schema"
)

// RateLimitedClient 按 RPS 限流的 Client 包装；超时等待视作网关不可用
type RateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimitedClient 创建限流包装；requestsPerMinute<=0 时不限流
func NewRateLimitedClient(inner Client, requestsPerMinute float64, burst int) *RateLimitedClient {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), burst)
	}
	return &RateLimitedClient{inner: inner, limiter: limiter}
}

func (c *RateLimitedClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: 限流等待中断: %v", ErrGatewayUnavailable, err)
	}
	return nil
}

// Ask 限流后转发
func (c *RateLimitedClient) Ask(ctx context.Context, messages []schema.Message, opts Options) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	return c.inner.Ask(ctx, messages, opts)
}

// AskTool 限流后转发
func (c *RateLimitedClient) AskTool(ctx context.Context, messages []schema.Message, tools []ToolDeclaration, opts Options) (string, []schema.ToolCall, error) {
	if err := c.wait(ctx); err != nil {
		return "", nil, err
	}
	return c.inner.AskTool(ctx, messages, tools, opts)
}

// Model 返回内层模型名称
func (c *RateLimitedClient) Model() string {
	return c.inner.Model()
}
