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
	"fmt"
	"strings"

	"dbchat/internal/catalog"
	"dbchat/internal/llm"
	"dbchat/internal/schema"
)

// DbInfoAgent 数据库结构问答工作者：把目录描述注入 prompt，
// 回答关于表与字段的问题，不执行任何 SQL。
type DbInfoAgent struct {
	llm     llm.Client
	catalog *catalog.Catalog
	memory  *schema.Memory
}

// NewDbInfoAgent 创建结构问答工作者
func NewDbInfoAgent(client llm.Client, cat *catalog.Catalog, mem *schema.Memory) *DbInfoAgent {
	return &DbInfoAgent{llm: client, catalog: cat, memory: mem}
}

func (a *DbInfoAgent) Name() string { return WorkerDbInfo.String() }

// Memory 返回共享会话记忆
func (a *DbInfoAgent) Memory() *schema.Memory { return a.memory }

// Step 基于目录描述回答结构问题
func (a *DbInfoAgent) Step(ctx context.Context, task string) (string, error) {
	prompt := fmt.Sprintf(promptDbInfo, a.catalog.Describe(), task)
	answer, err := a.llm.Ask(ctx, []schema.Message{schema.UserMessage(prompt)}, llm.Options{})
	if err != nil {
		reply := "抱歉，模型服务暂时不可用，请稍后再试。"
		a.memory.Append(schema.AssistantMessage(reply))
		return reply, err
	}
	reply := strings.TrimSpace(answer)
	a.memory.Append(schema.AssistantMessage(reply))
	return reply, nil
}
