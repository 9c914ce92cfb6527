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

package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"dbchat/internal/schema"
)

// PgExecutor PostgreSQL 实现的 Executor。
// 进程级长生命周期资源：启动时创建，关闭时 Close；同一时刻只允许一条语句在执行，
// 失败的语句在返回前回滚事务，保证下一次尝试不被残留事务阻塞。
type PgExecutor struct {
	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPgExecutor 创建 PostgreSQL 执行器
func NewPgExecutor(ctx context.Context, dsn string, poolSize int) (*PgExecutor, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if poolSize > 0 {
		config.MaxConns = int32(poolSize)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PgExecutor{pool: pool}, nil
}

// Close 关闭连接池
func (e *PgExecutor) Close() {
	e.pool.Close()
}

// Execute 在独立事务中执行 SQL；错误时回滚并返回数据库原始错误文本
func (e *PgExecutor) Execute(ctx context.Context, sql string) *ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return Failure(sql, err.Error())
	}

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Failure(sql, err.Error())
	}

	columns := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			rows.Close()
			_ = tx.Rollback(ctx)
			return Failure(sql, err.Error())
		}
		data = append(data, values)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		_ = tx.Rollback(ctx)
		return Failure(sql, err.Error())
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return Failure(sql, err.Error())
	}

	return Success(sql, &schema.ResultTable{Columns: columns, Rows: data})
}

// TestConnection 连通性检查，返回用户可读的状态文本
func (e *PgExecutor) TestConnection(ctx context.Context) string {
	var one int
	if err := e.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Sprintf("数据库连接失败: %v", err)
	}
	return "数据库连接正常"
}
