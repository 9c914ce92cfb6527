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

package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
)

// Server Hertz HTTP 服务
type Server struct {
	hertz   *server.Hertz
	handler *Handler
}

// NewServer 创建 HTTP 服务并注册路由
func NewServer(addr string, handler *Handler) *Server {
	h := server.New(server.WithHostPorts(addr))

	h.GET("/healthz", handler.HealthCheck)
	h.GET("/metrics", handler.Metrics)

	apiGroup := h.Group("/api")
	apiGroup.POST("/chat", handler.Chat)
	apiGroup.GET("/history", handler.History)
	apiGroup.GET("/sessions", handler.Sessions)
	apiGroup.POST("/chart", handler.Chart)

	return &Server{hertz: h, handler: handler}
}

// SetupLogger 将 Hertz 框架日志接入 slog 扩展，与进程日志配置对齐
func SetupLogger(output io.Writer, level string) {
	levelVar := &slog.LevelVar{}
	switch level {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
	hlog.SetLogger(hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	))
}

// Hertz 返回底层服务实例，供路由测试使用
func (s *Server) Hertz() *server.Hertz {
	return s.hertz
}

// Run 启动服务并阻塞
func (s *Server) Run() error {
	if err := s.hertz.Run(); err != nil {
		return fmt.Errorf("HTTP 服务退出: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.hertz.Shutdown(ctx)
}
