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

// schemagen 从 PostgreSQL 反向生成表结构目录 YAML。
// 表与字段的注释（COMMENT ON）会带入 description，供选表与 SQL 生成 prompt 使用。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"

	"dbchat/internal/catalog"
)

const columnQuery = `
SELECT
    c.table_name,
    obj_description(pc.oid) AS table_comment,
    c.column_name,
    c.data_type,
    col_description(pc.oid, c.ordinal_position) AS column_comment
FROM information_schema.columns c
JOIN pg_class pc ON pc.relname = c.table_name
JOIN pg_namespace pn ON pn.oid = pc.relnamespace AND pn.nspname = c.table_schema
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position`

func main() {
	dsn := flag.String("dsn", os.Getenv("DATABASE_DSN"), "PostgreSQL DSN")
	schemaName := flag.String("schema", "public", "要导出的 schema")
	output := flag.String("out", "configs/catalog.yaml", "输出文件路径，- 表示标准输出")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("缺少 DSN：使用 -dsn 或 DATABASE_DSN 环境变量")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, *dsn)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	defer conn.Close(ctx)

	cat, err := introspect(ctx, conn, *schemaName)
	if err != nil {
		log.Fatalf("读取表结构失败: %v", err)
	}
	if len(cat.Tables) == 0 {
		log.Fatalf("schema %q 中没有表", *schemaName)
	}

	data, err := yaml.Marshal(cat)
	if err != nil {
		log.Fatalf("序列化目录失败: %v", err)
	}

	if *output == "-" {
		fmt.Print(string(data))
		return
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("写入 %s 失败: %v", *output, err)
	}
	log.Printf("已写入 %s（%d 张表）", *output, len(cat.Tables))
}

func introspect(ctx context.Context, conn *pgx.Conn, schemaName string) (*catalog.Catalog, error) {
	rows, err := conn.Query(ctx, columnQuery, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cat := &catalog.Catalog{}
	index := map[string]int{}
	for rows.Next() {
		var tableName, columnName, dataType string
		var tableComment, columnComment *string
		if err := rows.Scan(&tableName, &tableComment, &columnName, &dataType, &columnComment); err != nil {
			return nil, err
		}

		i, ok := index[tableName]
		if !ok {
			i = len(cat.Tables)
			index[tableName] = i
			cat.Tables = append(cat.Tables, catalog.TableSchema{
				Name:        tableName,
				Description: deref(tableComment),
			})
		}
		cat.Tables[i].Columns = append(cat.Tables[i].Columns, catalog.Column{
			Name:        columnName,
			Type:        dataType,
			Description: deref(columnComment),
		})
	}
	return cat, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
