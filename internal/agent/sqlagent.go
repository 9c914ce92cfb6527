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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dbchat/internal/catalog"
	"dbchat/internal/db"
	"dbchat/internal/llm"
	"dbchat/internal/schema"
	"dbchat/pkg/metrics"
)

// DefaultMaxFixAttempts 初次执行失败后允许的修复轮数默认值
const DefaultMaxFixAttempts = 2

// DefaultSampleRows 结果分析时送入 LLM 的最大行数默认值
const DefaultSampleRows = 5

// 生成/修复走低温保证确定性，分析走高温换取表达
const (
	tempGenerate = 0.2
	tempAnalyze  = 0.7
)

// ChartSuggestion LLM 通过工具调用给出的可视化建议
type ChartSuggestion struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	XColumn  string   `json:"x_column"`
	YColumns []string `json:"y_columns"`
}

// SQLAgentConfig SQL 工作者的调节项；零值字段使用默认
type SQLAgentConfig struct {
	MaxFixAttempts      int
	SampleRows          int
	TableMatchThreshold float64
	SuggestChart        bool
}

// SQLAgent SQL 工作者：选表、生成、执行、失败时在预算内修复重试，
// 成功后用 LLM 分析结果样本并回答用户。
// 任何终止路径都产出用户可见的回复并追加到 Memory。
type SQLAgent struct {
	llm      llm.Client
	executor db.Executor
	catalog  *catalog.Catalog
	memory   *schema.Memory
	cfg      SQLAgentConfig
	logger   *slog.Logger

	lastChart *ChartSuggestion
}

// NewSQLAgent 创建 SQL 工作者
func NewSQLAgent(client llm.Client, executor db.Executor, cat *catalog.Catalog, mem *schema.Memory, cfg SQLAgentConfig, logger *slog.Logger) *SQLAgent {
	if cfg.MaxFixAttempts <= 0 {
		cfg.MaxFixAttempts = DefaultMaxFixAttempts
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = DefaultSampleRows
	}
	if cfg.TableMatchThreshold <= 0 {
		cfg.TableMatchThreshold = DefaultTableMatchThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLAgent{llm: client, executor: executor, catalog: cat, memory: mem, cfg: cfg, logger: logger}
}

func (a *SQLAgent) Name() string { return WorkerSQL.String() }

// Memory 返回共享会话记忆
func (a *SQLAgent) Memory() *schema.Memory { return a.memory }

// LastChart 返回最近一次成功查询的图表建议；未建议时为 nil
func (a *SQLAgent) LastChart() *ChartSuggestion { return a.lastChart }

// Step 执行一轮完整的 SQL 工作流。
// 出错时 reply 仍为可展示给用户的说明文本，err 标记失败类别供上层统计。
func (a *SQLAgent) Step(ctx context.Context, task string) (string, error) {
	a.lastChart = nil

	tableName, err := a.selectTable(ctx, task)
	if err != nil {
		return a.fail(fmt.Sprintf("抱歉，没有找到与这个问题相关的数据表。可用的表：%s。", strings.Join(a.catalog.TableNames(), ", ")), err)
	}
	tbl, _ := a.catalog.Get(tableName)

	sqlCode, err := a.generate(ctx, task, tbl)
	if err != nil {
		return a.fail("抱歉，未能为这个问题生成有效的 SQL 查询，请换一种方式描述。", err)
	}
	a.logger.Info("SQL 生成完成", "table", tableName, "sql", sqlCode)

	result := a.execute(ctx, sqlCode)
	attempts := 0
	for result.Err() && attempts < a.cfg.MaxFixAttempts {
		attempts++
		metrics.SQLFixAttempts.Inc()
		a.logger.Warn("SQL 执行失败，尝试修复", "attempt", attempts, "error", result.Message)

		fixed, fixErr := a.fix(ctx, result.SQL, result.Message)
		if fixErr != nil {
			if !errors.Is(fixErr, ErrNoSQL) {
				// 网关失败无法继续修复，直接终止
				return a.fail(a.exhaustedReply(result), fixErr)
			}
			// 修复响应里没有 SQL：消耗一次预算但不重新执行
			result = db.Failure(result.SQL, "修复响应中未能提取 SQL")
			continue
		}
		result = a.execute(ctx, fixed)
	}

	if result.Err() {
		return a.fail(a.exhaustedReply(result), fmt.Errorf("%w: %s", ErrAttemptsExhausted, result.Message))
	}

	a.memory.SetCurrentSQL(result.SQL)
	a.memory.SetCurrentResult(result.Table)

	reply, err := a.analyze(ctx, task, result)
	if err != nil {
		// 分析失败仍要把查询结果交付用户
		fallback := fmt.Sprintf("查询执行成功。\n\nSQL:\n```sql\n%s\n```\n\n结果（前 %d 行）：\n%s",
			result.SQL, a.cfg.SampleRows, result.Table.Head(a.cfg.SampleRows).String())
		return a.fail(fallback, err)
	}

	if a.cfg.SuggestChart {
		a.suggestChart(ctx, task, result.Table)
	}

	a.memory.Append(schema.AssistantMessage(reply))
	return reply, nil
}

// selectTable 让 LLM 从目录中挑选目标表并解析其回答
func (a *SQLAgent) selectTable(ctx context.Context, task string) (string, error) {
	prompt := fmt.Sprintf(promptSelectTable, a.catalog.Describe(), task)
	answer, err := a.llm.Ask(ctx, []schema.Message{schema.UserMessage(prompt)}, llm.Options{Temperature: tempGenerate})
	if err != nil {
		return "", err
	}

	name := SelectTable(answer, a.catalog.TableNames(), a.cfg.TableMatchThreshold)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrTableNotFound, strings.TrimSpace(answer))
	}
	return name, nil
}

// generate 生成 SQL 并提取
func (a *SQLAgent) generate(ctx context.Context, task string, tbl *catalog.TableSchema) (string, error) {
	prompt := fmt.Sprintf(promptGenerateSQL, tbl.Describe(), a.catalog.Helper, task, tbl.Name)
	answer, err := a.llm.Ask(ctx, []schema.Message{schema.UserMessage(prompt)}, llm.Options{Temperature: tempGenerate})
	if err != nil {
		return "", err
	}
	sqlCode, _, err := ExtractSQL(answer)
	if err != nil {
		return "", err
	}
	return sqlCode, nil
}

// fix 基于最近一次错误信息修复 SQL；只携带最新错误，历史错误对已改写的语句没有参考价值
func (a *SQLAgent) fix(ctx context.Context, sqlCode, dbError string) (string, error) {
	prompt := fmt.Sprintf(promptFixSQL, dbError, sqlCode)
	answer, err := a.llm.Ask(ctx, []schema.Message{schema.UserMessage(prompt)}, llm.Options{Temperature: tempGenerate})
	if err != nil {
		return "", err
	}
	fixed, _, err := ExtractSQL(answer)
	if err != nil {
		return "", err
	}
	return fixed, nil
}

func (a *SQLAgent) execute(ctx context.Context, sqlCode string) *db.ExecutionResult {
	result := a.executor.Execute(ctx, sqlCode)
	if result.Err() {
		metrics.SQLExecuteTotal.WithLabelValues(db.StatusError).Inc()
	} else {
		metrics.SQLExecuteTotal.WithLabelValues(db.StatusSuccess).Inc()
	}
	return result
}

// analyze 让 LLM 基于结果样本回答用户问题
func (a *SQLAgent) analyze(ctx context.Context, task string, result *db.ExecutionResult) (string, error) {
	sample := result.Table.Head(a.cfg.SampleRows)
	prompt := fmt.Sprintf(promptAnalyzeResult, task, result.SQL, a.cfg.SampleRows, sample.String())
	answer, err := a.llm.Ask(ctx, []schema.Message{schema.UserMessage(prompt)}, llm.Options{Temperature: tempAnalyze})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// suggestChart 通过工具调用征询图表建议；任何失败都只记日志，不影响回复
func (a *SQLAgent) suggestChart(ctx context.Context, task string, table *schema.ResultTable) {
	prompt := fmt.Sprintf(promptSuggestChart, task, strings.Join(table.Columns, ", "), chartGuidance)
	tools := []llm.ToolDeclaration{suggestChartTool()}
	_, calls, err := a.llm.AskTool(ctx, []schema.Message{schema.UserMessage(prompt)}, tools, llm.Options{})
	if err != nil {
		a.logger.Warn("图表建议调用失败", "error", err)
		return
	}
	for _, call := range calls {
		if call.Function.Name != "suggest_chart" {
			continue
		}
		var suggestion ChartSuggestion
		if err := json.Unmarshal([]byte(call.Function.Arguments), &suggestion); err != nil {
			a.logger.Warn("图表建议参数解析失败", "error", err)
			return
		}
		a.lastChart = &suggestion
		return
	}
}

// suggestChartTool 图表建议的工具声明
func suggestChartTool() llm.ToolDeclaration {
	return llm.ToolDeclaration{
		Name:        "suggest_chart",
		Description: "Recommend a chart to visualize the query result.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{
					"type": "string",
					"enum": []string{"bar", "line", "pie", "scatter", "heatmap", "box"},
				},
				"title":    map[string]any{"type": "string"},
				"x_column": map[string]any{"type": "string"},
				"y_columns": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []string{"type", "x_column", "y_columns"},
		},
	}
}

// exhaustedReply 渲染修复预算耗尽后的用户可见说明，附带最后一次 SQL 与数据库错误
func (a *SQLAgent) exhaustedReply(result *db.ExecutionResult) string {
	return fmt.Sprintf("抱歉，多次尝试后查询仍然失败。\n\n最后执行的 SQL:\n```sql\n%s\n```\n\n数据库错误：%s", result.SQL, result.Message)
}

// fail 将失败说明写入 Memory 并返回；系统总是回答用户
func (a *SQLAgent) fail(reply string, err error) (string, error) {
	a.memory.Append(schema.AssistantMessage(reply))
	return reply, err
}
