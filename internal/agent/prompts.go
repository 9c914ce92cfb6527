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

// prompt 模板统一放在这里，控制流代码不内嵌长文本

const promptSummarizeQueries = `Summarize the following list of queries into a single query. Do not add any new information or details, just combine relevant queries into a concise form.

Query List: ["天气真好!"]
Summarized Query: 天气真好!

Query List: ["你是谁"]
Summarized Query: 你是谁

Query List: ["查询车辆所有ID", "修改一下, 添加每个车的充电时长", "我想知道每辆车的平均充电DOD"]
Summarized Query: 查询所有车辆ID，并添加每辆车的充电时长，以及每辆车的平均充电DOD。

Begin!

Query List: %s
Summarized Query: `

const promptAssignWorker = `Try your best to assign the task to the following employees: %s.
The description of the employees are:
%s

Respond with just the employee name, nothing else.

Examples:

Question: 数据表里有多少车辆
Worker: sql

Question: 数据表有什么字段
Worker: db-info

Question: 今天天气真好
Worker: chat

Question: 统计 charge_t 中, 车辆每周充电次数的分布情况
Worker: sql

Question: 充电时间的分布情况如何
Worker: sql

Begin!

Question: %s
Worker: `

const promptSelectTable = `Based on the following table descriptions and user query, determine which table should be used:

Table descriptions:
%s

User query: %s

First, analyze what information the user is looking for.
Then, determine which table contains the necessary fields to answer the query.
Respond with just the table name, nothing else.
`

const promptGenerateSQL = `Generate a SQL query for the following question.

Table schema:
%s

Reference information:
%s

User question: %s

Requirements:
1. Write a valid SQL query that addresses the user's request
2. Include appropriate filtering, grouping, and ordering based on the question
3. Consider performance optimization
4. Only use fields that exist in the schema
5. The table name is "%s"

Return only the SQL query, no explanations.
`

const promptFixSQL = `Based on the following error message, fix the SQL query.

Error message: %s

SQL query:
` + "```sql\n%s\n```" + `

Requirements:
1. Fix the SQL query to address the error
2. Keep the SQL query valid
3. Keep the SQL query concise

Return only the corrected SQL query, no explanations.
`

const promptAnalyzeResult = `Based on the following query results and the user's question, provide an informative response.

User question: %s

SQL query executed:
` + "```sql\n%s\n```" + `

Query results (first %d rows):
%s

Please provide:
1. A direct answer to the user's question
2. Any relevant insights from the data
3. Make the response conversational and helpful
4. Keep your response concise and focused on the data

Response:`

const promptDbInfo = `**You are a professional data scientist and analyst. I will provide you with database information,
including table names and field descriptions. Please answer the user's question about this database.**

## Database Information

%s

## User Question

%s

## Output Requirements
1. Understand the user's question. For complex questions, extract the key points first.
2. Understand the database structure, select appropriate tables, and based on the field descriptions, answer the user's question.
`

// 图表类型适用场景说明，随工具声明一并提供给 LLM
const chartGuidance = `Chart type suitability:
- bar: comparison across categories
- line: trend over time
- pie: part-of-whole composition
- scatter: relationship between two numeric variables
- heatmap: correlation structure
- box: distribution and outliers`

const promptSuggestChart = `The user asked: %s

The query returned columns: %s

%s

If a chart would help present this result, call the suggest_chart tool with your recommendation.
`
