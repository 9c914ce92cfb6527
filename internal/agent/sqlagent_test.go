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

	"dbchat/internal/catalog"
	"dbchat/internal/db"
	"dbchat/internal/schema"
)

// stubExecutor 按脚本返回执行结果；errs[i] 为空表示第 i 次调用成功
type stubExecutor struct {
	errs  []string
	table *schema.ResultTable
	sqls  []string
}

func (e *stubExecutor) Execute(ctx context.Context, sql string) *db.ExecutionResult {
	i := len(e.sqls)
	e.sqls = append(e.sqls, sql)
	if i < len(e.errs) && e.errs[i] != "" {
		return db.Failure(sql, e.errs[i])
	}
	return db.Success(sql, e.table)
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Tables: []catalog.TableSchema{
			{
				Name:        "transactions",
				Description: "交易流水",
				Columns: []catalog.Column{
					{Name: "id", Type: "bigint", Description: "主键"},
					{Name: "amount", Type: "numeric", Description: "金额"},
				},
			},
		},
	}
}

func TestSQLAgent_FixLoopRecovers(t *testing.T) {
	// 前两次执行失败，第三次成功：共 3 次执行、2 次修复
	llmStub := &stubLLM{responses: []string{
		"transactions",
		"```sql\nSELECT amont FROM transactions;\n```",
		"```sql\nSELECT amount FROM transaction;\n```",
		"```sql\nSELECT amount FROM transactions;\n```",
		"平均金额是 42。",
	}}
	exec := &stubExecutor{
		errs:  []string{`column "amont" does not exist`, `relation "transaction" does not exist`, ""},
		table: &schema.ResultTable{Columns: []string{"amount"}, Rows: [][]any{{42}}},
	}
	mem := schema.NewMemory(0)
	a := NewSQLAgent(llmStub, exec, testCatalog(), mem, SQLAgentConfig{MaxFixAttempts: 3}, nil)

	reply, err := a.Step(context.Background(), "平均交易金额是多少")
	require.NoError(t, err)
	assert.Equal(t, "平均金额是 42。", reply)
	require.Len(t, exec.sqls, 3)
	assert.Equal(t, "SELECT amount FROM transactions", exec.sqls[2])

	// 成功后当前 SQL 与结果写入记忆槽位
	assert.Equal(t, "SELECT amount FROM transactions", mem.CurrentSQL())
	require.NotNil(t, mem.CurrentResult())
	assert.Equal(t, 1, mem.CurrentResult().NumRows())

	last, lastErr := mem.Last()
	require.NoError(t, lastErr)
	assert.Equal(t, schema.RoleAssistant, last.Role)
	assert.Equal(t, reply, last.Content)
}

func TestSQLAgent_AttemptsExhausted(t *testing.T) {
	// maxFix=1：初次执行 + 1 次修复后仍失败，共 2 次执行
	llmStub := &stubLLM{responses: []string{
		"transactions",
		"```sql\nSELECT broken FROM transactions;\n```",
		"```sql\nSELECT still_broken FROM transactions;\n```",
	}}
	exec := &stubExecutor{errs: []string{"syntax error", `column "still_broken" does not exist`}}
	mem := schema.NewMemory(0)
	a := NewSQLAgent(llmStub, exec, testCatalog(), mem, SQLAgentConfig{MaxFixAttempts: 1}, nil)

	reply, err := a.Step(context.Background(), "查一下")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttemptsExhausted))
	assert.Len(t, exec.sqls, 2)

	// 失败回复包含最后的 SQL 与数据库错误，且写入记忆
	assert.Contains(t, reply, "SELECT still_broken FROM transactions")
	assert.Contains(t, reply, `column "still_broken" does not exist`)
	last, lastErr := mem.Last()
	require.NoError(t, lastErr)
	assert.Equal(t, reply, last.Content)
}

func TestSQLAgent_FixExtractionConsumesAttempt(t *testing.T) {
	// 修复响应提取不到 SQL：消耗预算但不触发执行
	llmStub := &stubLLM{responses: []string{
		"transactions",
		"```sql\nSELECT broken;\n```",
		"I cannot fix this query.",
	}}
	exec := &stubExecutor{errs: []string{"syntax error"}}
	a := NewSQLAgent(llmStub, exec, testCatalog(), schema.NewMemory(0), SQLAgentConfig{MaxFixAttempts: 1}, nil)

	_, err := a.Step(context.Background(), "查一下")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttemptsExhausted))
	assert.Len(t, exec.sqls, 1)
}

func TestSQLAgent_TableNotFound(t *testing.T) {
	llmStub := &stubLLM{responses: []string{"用户表"}}
	exec := &stubExecutor{}
	mem := schema.NewMemory(0)
	a := NewSQLAgent(llmStub, exec, testCatalog(), mem, SQLAgentConfig{}, nil)

	reply, err := a.Step(context.Background(), "查询用户年龄分布")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
	assert.Contains(t, reply, "transactions")
	assert.Empty(t, exec.sqls)
}

func TestSQLAgent_GenerateNoSQL(t *testing.T) {
	llmStub := &stubLLM{responses: []string{"transactions", "抱歉，我无法回答这个问题。"}}
	exec := &stubExecutor{}
	a := NewSQLAgent(llmStub, exec, testCatalog(), schema.NewMemory(0), SQLAgentConfig{}, nil)

	_, err := a.Step(context.Background(), "查一下")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSQL))
	assert.Empty(t, exec.sqls)
}

func TestSQLAgent_ChartSuggestion(t *testing.T) {
	llmStub := &stubLLM{
		responses: []string{
			"transactions",
			"```sql\nSELECT amount FROM transactions;\n```",
			"查询到 1 条记录。",
			"",
		},
		toolCalls: [][]schema.ToolCall{
			nil, nil, nil,
			{{
				ID:   "call_1",
				Type: "function",
				Function: schema.Function{
					Name:      "suggest_chart",
					Arguments: `{"type":"bar","title":"金额分布","x_column":"id","y_columns":["amount"]}`,
				},
			}},
		},
	}
	exec := &stubExecutor{table: &schema.ResultTable{Columns: []string{"id", "amount"}, Rows: [][]any{{1, 42}}}}
	a := NewSQLAgent(llmStub, exec, testCatalog(), schema.NewMemory(0), SQLAgentConfig{SuggestChart: true}, nil)

	_, err := a.Step(context.Background(), "金额分布")
	require.NoError(t, err)
	require.NotNil(t, a.LastChart())
	assert.Equal(t, "bar", a.LastChart().Type)
	assert.Equal(t, []string{"amount"}, a.LastChart().YColumns)
}
