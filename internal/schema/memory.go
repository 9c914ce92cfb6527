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

package schema

import (
	"errors"
	"sync"
)

// ErrEmptyHistory 历史为空时 Last 返回
var ErrEmptyHistory = errors.New("empty message history")

// DefaultMaxMessages 消息上限默认值
const DefaultMaxMessages = 100

// Memory 单个 Agent 独占的会话记忆：消息日志 + 当前 SQL / 当前结果两个单值槽位。
// 消息超过上限时从头部丢弃，保留最近的 maxMessages 条。
type Memory struct {
	mu          sync.RWMutex
	messages    []Message
	maxMessages int

	currentSQL    string
	currentResult *ResultTable
}

// NewMemory 创建 Memory；maxMessages<=0 时使用默认 100
func NewMemory(maxMessages int) *Memory {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Memory{maxMessages: maxMessages}
}

// Append 追加消息；超限后丢弃最旧消息，保持原有相对顺序
func (m *Memory) Append(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if len(m.messages) > m.maxMessages {
		m.messages = m.messages[len(m.messages)-m.maxMessages:]
	}
}

// Messages 返回全部消息的副本
func (m *Memory) Messages() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len 当前消息数
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Recent 返回最近 n 条消息（原顺序）；不足 n 条时返回全部
func (m *Memory) Recent(n int) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n > len(m.messages) {
		n = len(m.messages)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Message, n)
	copy(out, m.messages[len(m.messages)-n:])
	return out
}

// Last 返回最后一条消息；历史为空时返回 ErrEmptyHistory
func (m *Memory) Last() (Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.messages) == 0 {
		return Message{}, ErrEmptyHistory
	}
	return m.messages[len(m.messages)-1], nil
}

// QueryList 按顺序返回所有 user 角色且内容非空的消息内容（累计的任务历史）
func (m *Memory) QueryList() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, msg := range m.messages {
		if msg.Role == RoleUser && msg.Content != "" {
			out = append(out, msg.Content)
		}
	}
	return out
}

// SetCurrentSQL 写入当前 SQL 槽位（覆盖）
func (m *Memory) SetCurrentSQL(sql string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentSQL = sql
}

// CurrentSQL 读取当前 SQL 槽位
func (m *Memory) CurrentSQL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentSQL
}

// SetCurrentResult 写入当前结果表槽位（覆盖）
func (m *Memory) SetCurrentResult(table *ResultTable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentResult = table
}

// CurrentResult 读取当前结果表槽位
func (m *Memory) CurrentResult() *ResultTable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentResult
}

// Clear 清空消息日志与两个槽位；Agent 切换与新会话时调用
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.currentSQL = ""
	m.currentResult = nil
}
