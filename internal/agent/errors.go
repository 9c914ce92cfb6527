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

import "errors"

// 领域错误。网关错误见 llm.ErrGatewayUnavailable，空历史见 schema.ErrEmptyHistory。
var (
	// ErrTableNotFound 选表失败：目录中无可匹配的表；当轮终止，不进入修复循环
	ErrTableNotFound = errors.New("table not found in catalog")
	// ErrNoSQL LLM 响应中提取不到 SQL；GENERATE 阶段终止当轮，FIX 阶段计入尝试预算
	ErrNoSQL = errors.New("no sql found in response")
	// ErrAttemptsExhausted 修复预算耗尽仍处于错误状态
	ErrAttemptsExhausted = errors.New("sql fix attempts exhausted")
)
