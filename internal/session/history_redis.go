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

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	pkgerrors "dbchat/pkg/errors"
)

// RedisStore 基于 Redis List 的历史存储；多实例部署时共享
type RedisStore struct {
	client *redis.Client
}

// RedisConfig Redis 历史存储连接参数
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore 创建 Redis 历史存储并验证连通性
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, pkgerrors.Wrapf(err, "连接 Redis %q", cfg.Addr)
	}
	return &RedisStore{client: client}, nil
}

// Append 追加一条记录到会话列表尾部
func (s *RedisStore) Append(ctx context.Context, userID, sessionID string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(err, "编码历史记录")
	}
	if err := s.client.RPush(ctx, historyKey(userID, sessionID), data).Err(); err != nil {
		return pkgerrors.Wrap(err, "写入 Redis 历史")
	}
	return nil
}

// Load 读取会话全部记录
func (s *RedisStore) Load(ctx context.Context, userID, sessionID string) ([]Record, error) {
	lines, err := s.client.LRange(ctx, historyKey(userID, sessionID), 0, -1).Result()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "读取 Redis 历史")
	}
	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Sessions 扫描用户的全部会话 ID
func (s *RedisStore) Sessions(ctx context.Context, userID string) ([]string, error) {
	prefix := historyKey(userID, "")
	var ids []string
	iter := s.client.Scan(ctx, 0, fmt.Sprintf("%s*", prefix), 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return ids, pkgerrors.Wrap(err, "扫描 Redis 历史键")
	}
	return ids, nil
}

// Close 释放连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
