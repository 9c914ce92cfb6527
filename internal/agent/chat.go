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

package agent

import (
	"context"
	"strings"

	"dbchat/internal/llm"
	"dbchat/internal/schema"
)

// ChatAgent 通用对话工作者：带完整会话历史调用 LLM，不触碰数据库。
// 同时是路由失败时的兜底出口。
type ChatAgent struct {
	llm    llm.Client
	memory *schema.Memory
}

// NewChatAgent 创建对话工作者
func NewChatAgent(client llm.Client, mem *schema.Memory) *ChatAgent {
	return &ChatAgent{llm: client, memory: mem}
}

func (a *ChatAgent) Name() string { return WorkerChat.String() }

// Memory 返回共享会话记忆
func (a *ChatAgent) Memory() *schema.Memory { return a.memory }

// Step 基于完整历史续写对话。task 仅用于接口一致性：
// 用户消息已由会话层写入 Memory，这里直接消费历史。
func (a *ChatAgent) Step(ctx context.Context, task string) (string, error) {
	answer, err := a.llm.Ask(ctx, a.memory.Messages(), llm.Options{})
	if err != nil {
		reply := "抱歉，模型服务暂时不可用，请稍后再试。"
		a.memory.Append(schema.AssistantMessage(reply))
		return reply, err
	}
	reply := strings.TrimSpace(answer)
	a.memory.Append(schema.AssistantMessage(reply))
	return reply, nil
}
