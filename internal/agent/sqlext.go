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
	"regexp"
	"strings"
)

// ExtractSource 标记 SQL 从响应中的提取路径，便于调用方与测试区分
type ExtractSource string

const (
	// ExtractFenced 从 markdown 代码块提取
	ExtractFenced ExtractSource = "fenced"
	// ExtractBare 响应本身就是裸 SQL
	ExtractBare ExtractSource = "bare"
)

var fencedSQLPattern = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")

// 裸文本被接受为 SQL 所需的起始关键字
var sqlKeywords = []string{
	"SELECT", "WITH", "INSERT", "UPDATE", "DELETE",
	"CREATE", "DROP", "ALTER", "SHOW", "EXPLAIN",
}

// ExtractSQL 从 LLM 响应中提取 SQL 语句。
// 存在多个代码块时取最后一个（模型可能先给示例再给最终答案）；
// 无代码块时仅当裸文本以 SQL 关键字开头才接受。
// 结尾的语句终止符一律去除（部分后端拒绝多语句批）。
func ExtractSQL(response string) (string, ExtractSource, error) {
	matches := fencedSQLPattern.FindAllStringSubmatch(response, -1)
	if len(matches) > 0 {
		sql := trimSQL(matches[len(matches)-1][1])
		if sql == "" {
			return "", ExtractFenced, ErrNoSQL
		}
		return sql, ExtractFenced, nil
	}

	bare := trimSQL(response)
	if bare == "" {
		return "", ExtractBare, ErrNoSQL
	}
	upper := strings.ToUpper(bare)
	for _, kw := range sqlKeywords {
		if strings.HasPrefix(upper, kw) {
			return bare, ExtractBare, nil
		}
	}
	return "", ExtractBare, ErrNoSQL
}

// trimSQL 去除首尾空白与结尾分号
func trimSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimRight(sql, ";")
	return strings.TrimSpace(sql)
}
