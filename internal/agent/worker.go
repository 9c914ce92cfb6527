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

	"dbchat/internal/schema"
)

// Worker 固定的工作者集合（封闭枚举）；路由结果只能是其中之一
type Worker int

const (
	// WorkerChat 通用对话，路由失败时的默认工作者
	WorkerChat Worker = iota
	// WorkerSQL SQL 生成与修复
	WorkerSQL
	// WorkerDbInfo 数据库结构问答
	WorkerDbInfo
)

// String 返回路由用的规范名称
func (w Worker) String() string {
	switch w {
	case WorkerSQL:
		return "sql"
	case WorkerDbInfo:
		return "db-info"
	default:
		return "chat"
	}
}

// ParseWorker 将规范化后的文本映射为 Worker；未知名称返回 false
func ParseWorker(name string) (Worker, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sql":
		return WorkerSQL, true
	case "db-info":
		return WorkerDbInfo, true
	case "chat":
		return WorkerChat, true
	default:
		return WorkerChat, false
	}
}

// Descriptor 工作者描述：路由 prompt 的花名册条目
type Descriptor struct {
	Name        string
	Description string
}

// DefaultRoster 默认花名册
func DefaultRoster() []Descriptor {
	return []Descriptor{
		{Name: WorkerSQL.String(), Description: "Generate and run SQL code based on user's input."},
		{Name: WorkerDbInfo.String(), Description: "Answer questions about database tables and structures."},
		{Name: WorkerChat.String(), Description: "Chat with user based on user's input."},
	}
}

// Agent 工作者统一接口：消费任务文本，追加 assistant 回复到 Memory 并返回。
// 出错时 reply 仍为用户可见的失败说明（系统总是回答用户）。
type Agent interface {
	Name() string
	Memory() *schema.Memory
	Step(ctx context.Context, task string) (reply string, err error)
}
