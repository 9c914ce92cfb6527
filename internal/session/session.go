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

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dbchat/internal/agent"
	"dbchat/internal/catalog"
	"dbchat/internal/db"
	"dbchat/internal/llm"
	"dbchat/internal/schema"
	"dbchat/pkg/metrics"
)

// Options 会话行为调节项；零值字段使用默认
type Options struct {
	MaxMessages     int
	ConsolidateMode string
	SQL             agent.SQLAgentConfig
}

// Deps 会话依赖集合
type Deps struct {
	LLM      llm.Client
	Executor db.Executor
	Catalog  *catalog.Catalog
	History  HistoryStore
	Logger   *slog.Logger
}

// Session 单个对话会话：持有共享 Memory、路由器与固定的工作者集合。
// 一次只处理一轮（互斥），同一会话的并发请求排队。
type Session struct {
	ID     string
	UserID string

	mu      sync.Mutex
	memory  *schema.Memory
	router  *agent.Router
	agents  map[agent.Worker]agent.Agent
	sql     *agent.SQLAgent
	pinned  *agent.Worker // 手动指定的工作者；nil 时每轮自动路由
	history HistoryStore
	logger  *slog.Logger
}

// New 创建会话；id 为空时生成
func New(id, userID string, deps Deps, opts Options) *Session {
	if id == "" {
		id = "session-" + uuid.New().String()
	}
	if deps.History == nil {
		deps.History = NopStore{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	mem := schema.NewMemory(opts.MaxMessages)
	sqlAgent := agent.NewSQLAgent(deps.LLM, deps.Executor, deps.Catalog, mem, opts.SQL, deps.Logger)
	agents := map[agent.Worker]agent.Agent{
		agent.WorkerChat:   agent.NewChatAgent(deps.LLM, mem),
		agent.WorkerSQL:    sqlAgent,
		agent.WorkerDbInfo: agent.NewDbInfoAgent(deps.LLM, deps.Catalog, mem),
	}

	return &Session{
		ID:      id,
		UserID:  userID,
		memory:  mem,
		router:  agent.NewRouter(deps.LLM, agent.DefaultRoster(), opts.ConsolidateMode, deps.Logger),
		agents:  agents,
		sql:     sqlAgent,
		history: deps.History,
		logger:  deps.Logger.With("session", id),
	}
}

// Chat 处理一轮用户输入：记忆与历史写入、合并、路由、分派。
// 路由环节的网关失败降级为 chat 兜底处理最新输入，不让整轮失败；
// 工作者自身的失败以 reply 形式回达用户，err 供上层统计。
func (s *Session) Chat(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.memory.Append(schema.UserMessage(text))
	s.record(ctx, schema.RoleUser, text)

	worker, task := s.decide(ctx, text)
	metrics.RouteTotal.WithLabelValues(worker.String()).Inc()
	s.logger.Info("任务分派", "worker", worker.String())

	reply, err := s.agents[worker].Step(ctx, task)

	outcome := "success"
	if err != nil {
		outcome = "failure"
		s.logger.Warn("工作者执行失败", "worker", worker.String(), "error", err)
	}
	metrics.TurnTotal.WithLabelValues(worker.String(), outcome).Inc()
	metrics.TurnDuration.WithLabelValues(worker.String()).Observe(time.Since(start).Seconds())

	s.record(ctx, schema.RoleAssistant, reply)
	return reply, err
}

// decide 确定本轮的工作者与任务文本。
// 手动指定工作者时跳过路由；自动模式下合并 query 历史后路由，
// 合并或路由的网关失败都回退为「最新输入 + chat」。
func (s *Session) decide(ctx context.Context, text string) (agent.Worker, string) {
	if s.pinned != nil {
		return *s.pinned, text
	}

	task, err := s.router.Consolidate(ctx, s.memory.QueryList())
	if err != nil {
		metrics.GatewayErrorTotal.Inc()
		s.logger.Warn("query 合并失败，回退最新输入", "error", err)
		return agent.WorkerChat, text
	}
	if task == "" {
		task = text
	}

	worker, err := s.router.Route(ctx, task)
	if err != nil {
		metrics.GatewayErrorTotal.Inc()
		s.logger.Warn("路由失败，回退 chat", "error", err)
		return agent.WorkerChat, text
	}
	return worker, task
}

// Switch 固定后续轮次的工作者并清空会话记忆：
// 累积的 query 列表面向旧的路由语境，切换后不再适用。
func (s *Session) Switch(w agent.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinned = &w
	s.memory.Clear()
}

// Auto 恢复自动路由
func (s *Session) Auto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinned = nil
}

// Reset 清空会话记忆，保留路由模式与工作者配置
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Clear()
}

// Memory 返回共享会话记忆
func (s *Session) Memory() *schema.Memory { return s.memory }

// LastChart 返回最近一次 SQL 成功后的图表建议；无建议时为 nil
func (s *Session) LastChart() *agent.ChartSuggestion { return s.sql.LastChart() }

// History 读取本会话的持久化历史
func (s *Session) History(ctx context.Context) ([]Record, error) {
	return s.history.Load(ctx, s.UserID, s.ID)
}

// record 写历史存储；失败只记日志，不阻断对话
func (s *Session) record(ctx context.Context, role, content string) {
	rec := Record{Role: role, Content: content, Time: time.Now()}
	if err := s.history.Append(ctx, s.UserID, s.ID, rec); err != nil {
		s.logger.Warn("历史写入失败", "error", err)
	}
}

// Manager 进程内的会话注册表；API 层按 (user, session) 取会话
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     Deps
	opts     Options
}

// NewManager 创建会话管理器
func NewManager(deps Deps, opts Options) *Manager {
	return &Manager{sessions: make(map[string]*Session), deps: deps, opts: opts}
}

// GetOrCreate 返回已有会话或新建；id 为空时分配新 ID
func (m *Manager) GetOrCreate(userID, sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionID != "" {
		if s, ok := m.sessions[sessionID]; ok {
			return s
		}
	}
	s := New(sessionID, userID, m.deps, m.opts)
	m.sessions[s.ID] = s
	return s
}

// Sessions 列出用户的持久化会话 ID
func (m *Manager) Sessions(ctx context.Context, userID string) ([]string, error) {
	if m.deps.History == nil {
		return nil, nil
	}
	return m.deps.History.Sessions(ctx, userID)
}
