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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbchat/internal/llm"
	"dbchat/internal/schema"
)

func TestChatAgent_UsesFullHistory(t *testing.T) {
	stub := &stubLLM{responses: []string{"我记得，你叫小明。"}}
	mem := schema.NewMemory(0)
	mem.Append(schema.UserMessage("我叫小明"))
	mem.Append(schema.AssistantMessage("你好，小明！"))
	mem.Append(schema.UserMessage("我叫什么名字？"))

	a := NewChatAgent(stub, mem)
	reply, err := a.Step(context.Background(), "我叫什么名字？")
	require.NoError(t, err)
	assert.Equal(t, "我记得，你叫小明。", reply)

	// 回复追加后历史为 4 条
	assert.Equal(t, 4, mem.Len())
}

func TestChatAgent_GatewayFailureStillReplies(t *testing.T) {
	stub := &stubLLM{err: llm.ErrGatewayUnavailable}
	mem := schema.NewMemory(0)
	mem.Append(schema.UserMessage("你好"))

	a := NewChatAgent(stub, mem)
	reply, err := a.Step(context.Background(), "你好")
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrGatewayUnavailable))
	assert.NotEmpty(t, reply)

	last, lastErr := mem.Last()
	require.NoError(t, lastErr)
	assert.Equal(t, schema.RoleAssistant, last.Role)
}

func TestDbInfoAgent_PromptCarriesCatalog(t *testing.T) {
	stub := &stubLLM{responses: []string{"transactions 表包含 id 和 amount 两个字段。"}}
	mem := schema.NewMemory(0)
	a := NewDbInfoAgent(stub, testCatalog(), mem)

	reply, err := a.Step(context.Background(), "数据表有什么字段")
	require.NoError(t, err)
	assert.Contains(t, reply, "transactions")

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "Table: transactions")
	assert.Contains(t, stub.prompts[0], "amount")
}

func TestDbInfoAgent_GatewayFailure(t *testing.T) {
	stub := &stubLLM{err: llm.ErrGatewayUnavailable}
	mem := schema.NewMemory(0)
	a := NewDbInfoAgent(stub, testCatalog(), mem)

	reply, err := a.Step(context.Background(), "有哪些表")
	require.Error(t, err)
	assert.NotEmpty(t, reply)
}
