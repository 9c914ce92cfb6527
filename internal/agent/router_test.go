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
)

func TestConsolidate_MergeVerbatim(t *testing.T) {
	stub := &stubLLM{}
	r := NewRouter(stub, nil, ConsolidateMerge, nil)

	task, err := r.Consolidate(context.Background(), []string{"查询车辆所有ID", "添加每个车的充电时长"})
	require.NoError(t, err)
	assert.Equal(t, "查询车辆所有ID\n添加每个车的充电时长", task)
	// merge 模式不走 LLM
	assert.Zero(t, stub.calls)
}

func TestConsolidate_SingleElementPassthrough(t *testing.T) {
	stub := &stubLLM{}
	r := NewRouter(stub, nil, ConsolidateSummarize, nil)

	task, err := r.Consolidate(context.Background(), []string{"天气真好!"})
	require.NoError(t, err)
	assert.Equal(t, "天气真好!", task)
	assert.Zero(t, stub.calls)
}

func TestConsolidate_Empty(t *testing.T) {
	r := NewRouter(&stubLLM{}, nil, "", nil)
	task, err := r.Consolidate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", task)
}

func TestConsolidate_Summarize(t *testing.T) {
	stub := &stubLLM{responses: []string{" 查询所有车辆ID，并添加充电时长。\n"}}
	r := NewRouter(stub, nil, ConsolidateSummarize, nil)

	task, err := r.Consolidate(context.Background(), []string{"查询车辆所有ID", "修改一下, 添加每个车的充电时长"})
	require.NoError(t, err)
	assert.Equal(t, "查询所有车辆ID，并添加充电时长。", task)
	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "查询车辆所有ID")
}

func TestConsolidate_UnknownModeDefaultsToMerge(t *testing.T) {
	r := NewRouter(&stubLLM{}, nil, "whatever", nil)
	assert.Equal(t, ConsolidateMerge, r.Mode())
}

func TestRoute_Known(t *testing.T) {
	stub := &stubLLM{responses: []string{"  SQL \n"}}
	r := NewRouter(stub, nil, "", nil)

	w, err := r.Route(context.Background(), "数据表里有多少车辆")
	require.NoError(t, err)
	assert.Equal(t, WorkerSQL, w)
}

func TestRoute_UnknownFallsBackToChat(t *testing.T) {
	// 未识别的分类结果不报错，回退默认工作者
	stub := &stubLLM{responses: []string{"manager"}}
	r := NewRouter(stub, nil, "", nil)

	w, err := r.Route(context.Background(), "帮我安排会议")
	require.NoError(t, err)
	assert.Equal(t, WorkerChat, w)
}

func TestRoute_GatewayError(t *testing.T) {
	stub := &stubLLM{err: llm.ErrGatewayUnavailable}
	r := NewRouter(stub, nil, "", nil)

	w, err := r.Route(context.Background(), "你好")
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrGatewayUnavailable))
	assert.Equal(t, WorkerChat, w)
}

func TestRoute_PromptCarriesRoster(t *testing.T) {
	stub := &stubLLM{responses: []string{"chat"}}
	r := NewRouter(stub, nil, "", nil)

	_, err := r.Route(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "sql")
	assert.Contains(t, stub.prompts[0], "db-info")
	assert.Contains(t, stub.prompts[0], "chat")
}
