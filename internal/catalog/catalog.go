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

// Package catalog 提供只读的表结构目录：进程启动时从 YAML 加载，运行期不变。
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	pkgerrors "dbchat/pkg/errors"
)

// Column 表字段：名称、声明类型与描述
type Column struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// TableSchema 单张表的结构描述
type TableSchema struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Columns     []Column `yaml:"columns"`
}

// Catalog 可用表的目录 + 注入生成 prompt 的辅助参考信息（如固定的分类枚举）
type Catalog struct {
	Tables []TableSchema `yaml:"tables"`
	Helper string        `yaml:"helper"`
}

// Load 从 YAML 文件加载目录
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "读取 catalog %q", path)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, pkgerrors.Wrapf(err, "解析 catalog %q", path)
	}
	if len(c.Tables) == 0 {
		return nil, fmt.Errorf("catalog %q 不包含任何表", path)
	}
	return &c, nil
}

// TableNames 按目录顺序返回全部表名
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for _, t := range c.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Get 按表名查找（大小写不敏感），返回目录中的原始条目
func (c *Catalog) Get(name string) (*TableSchema, bool) {
	for i := range c.Tables {
		if strings.EqualFold(c.Tables[i].Name, name) {
			return &c.Tables[i], true
		}
	}
	return nil, false
}

// Describe 渲染全部表的概要（表名 + 描述 + 字段清单），供选表与 db-info prompt
func (c *Catalog) Describe() string {
	var b strings.Builder
	for i, t := range c.Tables {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(t.Describe())
	}
	return b.String()
}

// Describe 渲染单张表的结构文本
func (t *TableSchema) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", t.Description)
	}
	b.WriteString("Columns:")
	for _, col := range t.Columns {
		fmt.Fprintf(&b, "\n  - %s (%s): %s", col.Name, col.Type, col.Description)
	}
	return b.String()
}
