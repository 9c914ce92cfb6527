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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Append_Cap(t *testing.T) {
	m := NewMemory(3)
	for i := 0; i < 5; i++ {
		m.Append(UserMessage(fmt.Sprintf("q%d", i)))
	}
	msgs := m.Messages()
	require.Len(t, msgs, 3)
	// 保留最近 3 条，顺序不变
	assert.Equal(t, "q2", msgs[0].Content)
	assert.Equal(t, "q3", msgs[1].Content)
	assert.Equal(t, "q4", msgs[2].Content)
}

func TestMemory_DefaultCap(t *testing.T) {
	m := NewMemory(0)
	for i := 0; i < DefaultMaxMessages+10; i++ {
		m.Append(UserMessage("x"))
	}
	assert.Equal(t, DefaultMaxMessages, m.Len())
}

func TestMemory_QueryList(t *testing.T) {
	m := NewMemory(0)
	m.Append(UserMessage("a"))
	m.Append(AssistantMessage("x"))
	m.Append(UserMessage("b"))
	assert.Equal(t, []string{"a", "b"}, m.QueryList())
}

func TestMemory_QueryList_SkipsEmptyContent(t *testing.T) {
	m := NewMemory(0)
	m.Append(Message{Role: RoleUser})
	m.Append(UserMessage("only"))
	assert.Equal(t, []string{"only"}, m.QueryList())
}

func TestMemory_Last_EmptyHistory(t *testing.T) {
	m := NewMemory(0)
	_, err := m.Last()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyHistory))

	m.Append(UserMessage("hi"))
	msg, err := m.Last()
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)
}

func TestMemory_Recent(t *testing.T) {
	m := NewMemory(0)
	m.Append(UserMessage("1"))
	m.Append(UserMessage("2"))
	got := m.Recent(5)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Content)
	assert.Nil(t, m.Recent(0))
}

func TestMemory_Slots_Overwrite(t *testing.T) {
	m := NewMemory(0)
	m.SetCurrentSQL("SELECT 1")
	m.SetCurrentSQL("SELECT 2")
	assert.Equal(t, "SELECT 2", m.CurrentSQL())

	t1 := &ResultTable{Columns: []string{"a"}, Rows: [][]any{{1}}}
	t2 := &ResultTable{Columns: []string{"b"}, Rows: [][]any{{2}}}
	m.SetCurrentResult(t1)
	m.SetCurrentResult(t2)
	assert.Equal(t, t2, m.CurrentResult())
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory(0)
	m.Append(UserMessage("x"))
	m.SetCurrentSQL("SELECT 1")
	m.SetCurrentResult(&ResultTable{Columns: []string{"a"}})
	m.Clear()
	assert.Zero(t, m.Len())
	assert.Empty(t, m.CurrentSQL())
	assert.Nil(t, m.CurrentResult())
}
