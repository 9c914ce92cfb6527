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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectTable_ExactCaseInsensitive(t *testing.T) {
	// 精确匹配优先于模糊匹配，且返回目录原始大小写
	got := SelectTable("Orders", []string{"orders", "order_items"}, 0)
	assert.Equal(t, "orders", got)
}

func TestSelectTable_ResponseContainsName(t *testing.T) {
	got := SelectTable("the orders table", []string{"orders"}, 0)
	assert.Equal(t, "orders", got)
}

func TestSelectTable_NameContainsResponse(t *testing.T) {
	// LLM 只回答了表名片段
	got := SelectTable("order_item", []string{"orders", "order_items"}, 0)
	assert.Equal(t, "order_items", got)
}

func TestSelectTable_FuzzyFallback(t *testing.T) {
	// 轻微拼写偏差由编辑距离兜底
	got := SelectTable("transactionss", []string{"transactions", "users"}, 0.5)
	assert.Equal(t, "transactions", got)
}

func TestSelectTable_NotFound(t *testing.T) {
	got := SelectTable("completely unrelated", []string{"orders", "users"}, 0.5)
	assert.Equal(t, "", got)
}

func TestSelectTable_EmptyResponse(t *testing.T) {
	assert.Equal(t, "", SelectTable("   ", []string{"orders"}, 0.5))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("abc", "abc"), 1e-9)
	assert.Less(t, similarity("abc", "xyz"), 0.5)
}
