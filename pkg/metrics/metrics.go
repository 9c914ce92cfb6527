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

package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		TurnDuration, TurnTotal,
		SQLFixAttempts, SQLExecuteTotal,
		GatewayErrorTotal, RouteTotal,
	)
}

// TurnDuration 单轮对话耗时（秒）
var TurnDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "dbchat_turn_duration_seconds",
		Help:    "单轮对话耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"worker"},
)

// TurnTotal 对话轮次总数（按 worker 与结果）
var TurnTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dbchat_turn_total",
		Help: "对话轮次总数",
	},
	[]string{"worker", "outcome"}, // outcome: success | failure
)

// SQLFixAttempts SQL 修复尝试总数
var SQLFixAttempts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "dbchat_sql_fix_attempts_total",
		Help: "SQL 修复尝试总数",
	},
)

// SQLExecuteTotal SQL 执行总数（按状态）
var SQLExecuteTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dbchat_sql_execute_total",
		Help: "SQL 执行总数",
	},
	[]string{"status"}, // success | error
)

// GatewayErrorTotal LLM 网关错误总数
var GatewayErrorTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "dbchat_gateway_error_total",
		Help: "LLM 网关错误总数",
	},
)

// RouteTotal 路由结果总数（按 worker）
var RouteTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dbchat_route_total",
		Help: "路由结果总数",
	},
	[]string{"worker"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
