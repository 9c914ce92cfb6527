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

// Package session 管理单个会话的完整对话回路：路由、分派、持久化历史。
package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "dbchat/pkg/errors"
)

// Record 历史存储中的一条消息；与会话内 Memory 解耦，带落盘时间戳
type Record struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// HistoryStore 对话历史持久化抽象。
// 历史写入失败不阻断当轮对话，调用方记日志后继续。
type HistoryStore interface {
	Append(ctx context.Context, userID, sessionID string, rec Record) error
	Load(ctx context.Context, userID, sessionID string) ([]Record, error)
	Sessions(ctx context.Context, userID string) ([]string, error)
	Close() error
}

// FileStore 按 用户/会话 分文件的 JSONL 历史存储
type FileStore struct {
	dir string
}

// NewFileStore 创建文件历史存储，dir 不存在时创建
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrapf(err, "创建历史目录 %q", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID, sessionID string) string {
	return filepath.Join(s.dir, userID, sessionID+".jsonl")
}

// Append 追加一条记录；按行写 JSON，崩溃最多损失最后一行
func (s *FileStore) Append(ctx context.Context, userID, sessionID string, rec Record) error {
	p := s.path(userID, sessionID)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return pkgerrors.Wrapf(err, "创建用户目录 %q", filepath.Dir(p))
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return pkgerrors.Wrapf(err, "打开历史文件 %q", p)
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(err, "编码历史记录")
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return pkgerrors.Wrapf(err, "写入历史文件 %q", p)
	}
	return nil
}

// Load 读取会话全部记录；文件不存在视为空历史
func (s *FileStore) Load(ctx context.Context, userID, sessionID string) ([]Record, error) {
	f, err := os.Open(s.path(userID, sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrapf(err, "打开历史文件 %q", s.path(userID, sessionID))
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// 跳过损坏行，尽量恢复其余历史
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, pkgerrors.Wrap(err, "读取历史文件")
	}
	return records, nil
}

// Sessions 列出用户的全部会话 ID
func (s *FileStore) Sessions(ctx context.Context, userID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrapf(err, "读取用户目录 %q", userID)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".jsonl"))
	}
	return ids, nil
}

// Close 实现 HistoryStore；文件存储无需清理
func (s *FileStore) Close() error { return nil }

// NopStore 丢弃所有历史；未配置持久化时使用
type NopStore struct{}

func (NopStore) Append(ctx context.Context, userID, sessionID string, rec Record) error {
	return nil
}

func (NopStore) Load(ctx context.Context, userID, sessionID string) ([]Record, error) {
	return nil, nil
}

func (NopStore) Sessions(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (NopStore) Close() error { return nil }

// historyKey Redis 存储的键布局，文件存储的路径布局与之对应
func historyKey(userID, sessionID string) string {
	return fmt.Sprintf("dbchat:history:%s:%s", userID, sessionID)
}
