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

// Package db 定义查询执行边界：对配置的关系库执行 SQL，返回表格结果或结构化错误。
package db

import (
	"context"

	"dbchat/internal/schema"
)

// 执行状态
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ExecutionResult 单次执行结果；仅在一次修复循环迭代内消费
type ExecutionResult struct {
	Status  string              // success | error
	Table   *schema.ResultTable // 仅 success 时有值
	Message string              // 仅 error 时有值：数据库原始错误文本
	SQL     string              // 回显执行的 SQL
}

// Err 是否为错误结果
func (r *ExecutionResult) Err() bool {
	return r == nil || r.Status != StatusSuccess
}

// Success 构造成功结果
func Success(sql string, table *schema.ResultTable) *ExecutionResult {
	return &ExecutionResult{Status: StatusSuccess, Table: table, SQL: sql}
}

// Failure 构造错误结果
func Failure(sql, message string) *ExecutionResult {
	return &ExecutionResult{Status: StatusError, Message: message, SQL: sql}
}

// Executor 查询执行器；实现方须保证出错后连接处于干净可复用状态
type Executor interface {
	Execute(ctx context.Context, sql string) *ExecutionResult
}
