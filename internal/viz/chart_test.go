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

package viz

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbchat/internal/schema"
	pkgerrors "dbchat/pkg/errors"
)

func sampleTable() *schema.ResultTable {
	return &schema.ResultTable{
		Columns: []string{"month", "amount", "refund"},
		Rows: [][]any{
			{"2026-01", 100, 3},
			{"2026-02", int64(140), 5},
			{"2026-03", 120.5, 2},
		},
	}
}

func TestRender_Bar(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleTable(), Spec{
		Type: TypeBar, Title: "月度金额", XColumn: "month", YColumns: []string{"amount", "refund"},
	})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "月度金额")
	assert.Contains(t, html, "2026-01")
}

func TestRender_PieUsesFirstColumn(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleTable(), Spec{
		Type: TypePie, XColumn: "month", YColumns: []string{"amount"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "2026-02")
}

func TestRender_LineWithoutXColumn(t *testing.T) {
	// 缺 x 轴列时退化为行号
	var buf bytes.Buffer
	err := Render(&buf, sampleTable(), Spec{Type: TypeLine, YColumns: []string{"amount"}})
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}

func TestRender_Box(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleTable(), Spec{Type: TypeBox, YColumns: []string{"amount"}})
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}

func TestRender_UnknownColumn(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleTable(), Spec{Type: TypeBar, XColumn: "month", YColumns: []string{"missing"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArg))
}

func TestRender_NonNumericColumn(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleTable(), Spec{Type: TypeBar, YColumns: []string{"month"}})
	require.Error(t, err)
}

func TestRender_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, &schema.ResultTable{}, Spec{Type: TypeBar, YColumns: []string{"amount"}})
	require.Error(t, err)
}

func TestRender_UnknownType(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleTable(), Spec{Type: "radar", YColumns: []string{"amount"}})
	require.Error(t, err)
}

func TestFiveNumber(t *testing.T) {
	got := fiveNumber([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, got)
}
