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
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultTableMatchThreshold 模糊匹配相似度阈值默认值
const DefaultTableMatchThreshold = 0.5

// SelectTable 将 LLM 的自由文本回答解析为目录中的表名。
// LLM 不保证原样复述目录键，按优先级匹配：
//  1. 精确匹配（忽略大小写与首尾空白）
//  2. 双向包含（回答夹带多余词语，或只给了表名片段）
//  3. 编辑距离相似度最高且不低于 threshold 的候选
//
// 均不命中时返回空串，调用方按当轮终止处理。返回值保留目录中的原始大小写。
func SelectTable(response string, tableNames []string, threshold float64) string {
	if threshold <= 0 {
		threshold = DefaultTableMatchThreshold
	}
	answer := strings.ToLower(strings.TrimSpace(response))
	if answer == "" {
		return ""
	}

	for _, name := range tableNames {
		if strings.ToLower(name) == answer {
			return name
		}
	}

	for _, name := range tableNames {
		lower := strings.ToLower(name)
		if strings.Contains(answer, lower) || strings.Contains(lower, answer) {
			return name
		}
	}

	best := ""
	bestRatio := 0.0
	for _, name := range tableNames {
		ratio := similarity(answer, strings.ToLower(name))
		if ratio > bestRatio {
			bestRatio = ratio
			best = name
		}
	}
	if bestRatio >= threshold {
		return best
	}
	return ""
}

// similarity 基于编辑距离的相似度 [0,1]
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
