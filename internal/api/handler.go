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

// Package api HTTP 接入层：对话、历史、图表渲染与运维端点
package api

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"dbchat/internal/session"
	"dbchat/internal/viz"
	"dbchat/pkg/metrics"
)

// Handler HTTP 处理器
type Handler struct {
	manager *session.Manager
	logger  *slog.Logger
}

// NewHandler 创建 HTTP 处理器
func NewHandler(manager *session.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{manager: manager, logger: logger}
}

// HealthCheck 健康检查
// GET /healthz
func (h *Handler) HealthCheck(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "dbchat-api",
		"timestamp": time.Now().Unix(),
	})
}

// Metrics Prometheus 文本格式指标
// GET /metrics
func (h *Handler) Metrics(c context.Context, ctx *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": "采集指标失败"})
		return
	}
	ctx.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

type chatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chartInfo struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	XColumn  string   `json:"x_column"`
	YColumns []string `json:"y_columns"`
}

type chatResponse struct {
	SessionID string     `json:"session_id"`
	Reply     string     `json:"reply"`
	SQL       string     `json:"sql,omitempty"`
	Chart     *chartInfo `json:"chart,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Chat 处理一轮对话
// POST /api/chat
func (h *Handler) Chat(c context.Context, ctx *app.RequestContext) {
	var req chatRequest
	if err := ctx.BindJSON(&req); err != nil || req.Message == "" {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "message 不能为空"})
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}

	s := h.manager.GetOrCreate(req.UserID, req.SessionID)
	reply, err := s.Chat(c, req.Message)

	resp := chatResponse{
		SessionID: s.ID,
		Reply:     reply,
		SQL:       s.Memory().CurrentSQL(),
	}
	if chart := s.LastChart(); chart != nil {
		resp.Chart = &chartInfo{
			Type:     chart.Type,
			Title:    chart.Title,
			XColumn:  chart.XColumn,
			YColumns: chart.YColumns,
		}
	}
	if err != nil {
		// 失败的回复仍照常返回，error 字段供前端区分
		h.logger.Warn("对话处理失败", "session", s.ID, "error", err)
		resp.Error = err.Error()
	}
	ctx.JSON(consts.StatusOK, resp)
}

// History 读取会话历史
// GET /api/history?user_id=&session_id=
func (h *Handler) History(c context.Context, ctx *app.RequestContext) {
	userID := ctx.Query("user_id")
	sessionID := ctx.Query("session_id")
	if userID == "" || sessionID == "" {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "user_id 与 session_id 不能为空"})
		return
	}

	s := h.manager.GetOrCreate(userID, sessionID)
	records, err := s.History(c)
	if err != nil {
		h.logger.Warn("历史读取失败", "session", sessionID, "error", err)
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": "历史读取失败"})
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"session_id": sessionID,
		"records":    records,
		"total":      len(records),
	})
}

// Sessions 列出用户的会话
// GET /api/sessions?user_id=
func (h *Handler) Sessions(c context.Context, ctx *app.RequestContext) {
	userID := ctx.Query("user_id")
	if userID == "" {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "user_id 不能为空"})
		return
	}
	ids, err := h.manager.Sessions(c, userID)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": "会话列表读取失败"})
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"sessions": ids, "total": len(ids)})
}

type chartRequest struct {
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	XColumn   string   `json:"x_column"`
	YColumns  []string `json:"y_columns"`
}

// Chart 将会话最近一次查询结果渲染为 HTML 图表
// POST /api/chart
func (h *Handler) Chart(c context.Context, ctx *app.RequestContext) {
	var req chartRequest
	if err := ctx.BindJSON(&req); err != nil || req.SessionID == "" {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "session_id 不能为空"})
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}

	s := h.manager.GetOrCreate(req.UserID, req.SessionID)
	table := s.Memory().CurrentResult()
	if table.Empty() {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "会话中没有可作图的查询结果"})
		return
	}

	spec := viz.Spec{Type: req.Type, Title: req.Title, XColumn: req.XColumn, YColumns: req.YColumns}
	if spec.Type == "" || len(spec.YColumns) == 0 {
		// 请求未指定时回落到最近的建议
		if chart := s.LastChart(); chart != nil {
			spec = viz.Spec{Type: chart.Type, Title: chart.Title, XColumn: chart.XColumn, YColumns: chart.YColumns}
		}
	}

	var buf bytes.Buffer
	if err := viz.Render(&buf, table, spec); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx.Data(consts.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
