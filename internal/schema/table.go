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
	"fmt"
	"strings"
)

// ResultTable 查询结果表：列名有序，行与列对齐
type ResultTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Empty 是否为空表
func (t *ResultTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// NumRows 行数
func (t *ResultTable) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Head 返回前 n 行的子表（不复制底层值）
func (t *ResultTable) Head(n int) *ResultTable {
	if t == nil {
		return nil
	}
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &ResultTable{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Column 返回指定列的值序列，列不存在时返回 nil
func (t *ResultTable) Column(name string) []any {
	if t == nil {
		return nil
	}
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values
}

// String 渲染为制表符分隔的文本，供 prompt 注入与终端展示
func (t *ResultTable) String() string {
	if t == nil || len(t.Columns) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		b.WriteString(strings.Join(cells, "\t"))
	}
	return b.String()
}
