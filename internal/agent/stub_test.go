package agent

import (
	"context"

	"dbchat/internal/llm"
	"dbchat/internal/schema"
)

// stubLLM 按脚本逐次返回响应；err 非空时每次调用都失败。
// prompts 记录每次调用的最后一条消息内容，供测试断言。
type stubLLM struct {
	responses []string
	toolCalls [][]schema.ToolCall
	err       error

	calls   int
	prompts []string
}

func (s *stubLLM) Ask(ctx context.Context, messages []schema.Message, opts llm.Options) (string, error) {
	resp, _, err := s.next(messages)
	return resp, err
}

func (s *stubLLM) AskTool(ctx context.Context, messages []schema.Message, tools []llm.ToolDeclaration, opts llm.Options) (string, []schema.ToolCall, error) {
	return s.next(messages)
}

func (s *stubLLM) Model() string { return "stub" }

func (s *stubLLM) next(messages []schema.Message) (string, []schema.ToolCall, error) {
	if len(messages) > 0 {
		s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	}
	if s.err != nil {
		return "", nil, s.err
	}
	i := s.calls
	s.calls++
	var resp string
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	var calls []schema.ToolCall
	if i < len(s.toolCalls) {
		calls = s.toolCalls[i]
	}
	return resp, calls, nil
}
