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

// dbchat 交互式终端：与数据库对话，查看生成的 SQL 与查询结果
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"dbchat/internal/agent"
	"dbchat/internal/app"
	"dbchat/internal/session"
	"dbchat/pkg/config"
)

const usage = `命令:
  /new            开始新会话（清空上下文）
  /sql            显示最近一次执行的 SQL
  /result         显示最近一次查询结果
  /switch <name>  固定工作者 (sql | db-info | chat)
  /auto           恢复自动路由
  /quit           退出`

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	userID := flag.String("user", "cli", "用户标识")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	ctx := context.Background()
	bootstrap, err := app.NewBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer bootstrap.Close()

	sess := bootstrap.Manager.GetOrCreate(*userID, "")
	fmt.Printf("dbchat 已就绪（会话 %s），输入 /help 查看命令。\n", sess.ID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if handleCommand(bootstrap, &sess, *userID, line) {
				return
			}
			continue
		}

		reply, err := sess.Chat(ctx, line)
		if err != nil {
			bootstrap.Logger.Debug("本轮处理出错", "error", err)
		}
		fmt.Println(reply)
		if chart := sess.LastChart(); chart != nil {
			fmt.Printf("[提示] 这个结果适合用 %s 图展示（x: %s, y: %s）\n",
				chart.Type, chart.XColumn, strings.Join(chart.YColumns, ", "))
		}
	}
}

// handleCommand 处理斜杠命令，返回 true 表示退出
func handleCommand(bootstrap *app.Bootstrap, sess **session.Session, userID, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		fmt.Println("再见。")
		return true
	case "/help":
		fmt.Println(usage)
	case "/new":
		*sess = bootstrap.Manager.GetOrCreate(userID, "")
		fmt.Printf("已开始新会话 %s。\n", (*sess).ID)
	case "/sql":
		if sql := (*sess).Memory().CurrentSQL(); sql != "" {
			fmt.Println(sql)
		} else {
			fmt.Println("当前会话还没有执行过 SQL。")
		}
	case "/result":
		if table := (*sess).Memory().CurrentResult(); !table.Empty() {
			fmt.Println(table.String())
		} else {
			fmt.Println("当前会话还没有查询结果。")
		}
	case "/switch":
		if len(fields) < 2 {
			fmt.Println("用法: /switch <sql | db-info | chat>")
			break
		}
		w, ok := agent.ParseWorker(fields[1])
		if !ok {
			fmt.Printf("未知工作者 %q，可选: sql, db-info, chat\n", fields[1])
			break
		}
		(*sess).Switch(w)
		fmt.Printf("已切换到 %s，上下文已清空。\n", w)
	case "/auto":
		(*sess).Auto()
		fmt.Println("已恢复自动路由。")
	default:
		fmt.Printf("未知命令 %s，输入 /help 查看命令。\n", fields[0])
	}
	return false
}
