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
	"fmt"
	"log/slog"
	"strings"

	"dbchat/internal/llm"
	"dbchat/internal/schema"
)

// 多轮 query 合并策略
const (
	// ConsolidateMerge 逐行拼接，保留原文（默认：无损且不花 LLM 调用）
	ConsolidateMerge = "merge"
	// ConsolidateSummarize 交给 LLM 摘要为一条指令，禁止引入新信息
	ConsolidateSummarize = "summarize"
)

// Router 决策路由：把累计的用户意图合并为一条任务描述，再分派给固定花名册中的一个工作者。
// 路由本身从不让一轮对话失败：未识别的分类结果回退到默认工作者（chat）。
type Router struct {
	llm    llm.Client
	roster []Descriptor
	mode   string
	logger *slog.Logger
}

// NewRouter 创建路由器；mode 为空时默认 merge，roster 为空时使用默认花名册
func NewRouter(client llm.Client, roster []Descriptor, mode string, logger *slog.Logger) *Router {
	if len(roster) == 0 {
		roster = DefaultRoster()
	}
	if mode != ConsolidateSummarize {
		mode = ConsolidateMerge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{llm: client, roster: roster, mode: mode, logger: logger}
}

// Consolidate 将 query 历史合并为一条任务描述。
// 0 或 1 条时原样返回，不调用 LLM；否则按 mode 合并。
// LLM 失败时错误原样上抛（llm.ErrGatewayUnavailable），由调用方回退处理。
func (r *Router) Consolidate(ctx context.Context, queryList []string) (string, error) {
	switch len(queryList) {
	case 0:
		return "", nil
	case 1:
		return queryList[0], nil
	}

	if r.mode == ConsolidateMerge {
		return strings.Join(queryList, "\n"), nil
	}

	encoded, _ := json.Marshal(queryList)
	prompt := fmt.Sprintf(promptSummarizeQueries, string(encoded))
	summary, err := r.llm.Ask(ctx, []schema.Message{schema.UserMessage(prompt)}, llm.Options{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// Route 将任务文本分类到一个工作者。
// 规范化后的回答与花名册精确匹配；不匹配时回退默认工作者而不是报错。
// 仅 LLM 网关失败会返回 error，同时返回默认工作者供调用方兜底。
func (r *Router) Route(ctx context.Context, task string) (Worker, error) {
	names := make([]string, 0, len(r.roster))
	var descriptions strings.Builder
	for _, d := range r.roster {
		names = append(names, d.Name)
		fmt.Fprintf(&descriptions, "- %s: %s\n", d.Name, d.Description)
	}

	prompt := fmt.Sprintf(promptAssignWorker, strings.Join(names, ", "), descriptions.String(), task)
	answer, err := r.llm.Ask(ctx, []schema.Message{schema.UserMessage(prompt)}, llm.Options{})
	if err != nil {
		return WorkerChat, err
	}

	worker, ok := ParseWorker(answer)
	if !ok {
		r.logger.Warn("路由结果未匹配任何工作者，回退默认", "answer", strings.TrimSpace(answer))
		return WorkerChat, nil
	}
	return worker, nil
}

// Mode 返回当前合并策略
func (r *Router) Mode() string {
	return r.mode
}
