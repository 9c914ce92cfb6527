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

// Package viz 将查询结果渲染为交互式 HTML 图表
package viz

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"dbchat/internal/schema"
	pkgerrors "dbchat/pkg/errors"
)

// 支持的图表类型
const (
	TypeBar     = "bar"
	TypeLine    = "line"
	TypePie     = "pie"
	TypeScatter = "scatter"
	TypeHeatmap = "heatmap"
	TypeBox     = "box"
)

// Spec 一次渲染的完整描述
type Spec struct {
	Type     string
	Title    string
	XColumn  string
	YColumns []string
}

// Render 按 spec 将结果表渲染为 HTML 写入 w。
// 引用的列必须存在于结果表中，y 轴列的值必须可转为数值。
func Render(w io.Writer, table *schema.ResultTable, spec Spec) error {
	if table == nil || table.Empty() {
		return pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "结果表为空")
	}
	if len(spec.YColumns) == 0 {
		return pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "未指定 y 轴列")
	}

	xVals, err := columnStrings(table, spec.XColumn)
	if err != nil {
		return err
	}
	series := make(map[string][]float64, len(spec.YColumns))
	for _, col := range spec.YColumns {
		vals, err := columnFloats(table, col)
		if err != nil {
			return err
		}
		series[col] = vals
	}

	switch spec.Type {
	case TypeBar:
		return renderBar(w, spec, xVals, series)
	case TypeLine:
		return renderLine(w, spec, xVals, series)
	case TypePie:
		return renderPie(w, spec, xVals, series[spec.YColumns[0]])
	case TypeScatter:
		return renderScatter(w, spec, xVals, series)
	case TypeHeatmap:
		return renderHeatmap(w, spec, xVals, series)
	case TypeBox:
		return renderBox(w, spec, series)
	default:
		return pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "不支持的图表类型 %q", spec.Type)
	}
}

func titleOpts(spec Spec) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{Title: spec.Title})
}

func renderBar(w io.Writer, spec Spec, x []string, series map[string][]float64) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(titleOpts(spec))
	bar.SetXAxis(x)
	for _, col := range spec.YColumns {
		data := make([]opts.BarData, len(series[col]))
		for i, v := range series[col] {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(col, data)
	}
	return bar.Render(w)
}

func renderLine(w io.Writer, spec Spec, x []string, series map[string][]float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(titleOpts(spec))
	line.SetXAxis(x)
	for _, col := range spec.YColumns {
		data := make([]opts.LineData, len(series[col]))
		for i, v := range series[col] {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(col, data)
	}
	return line.Render(w)
}

// renderPie 饼图只取第一个 y 轴列，x 轴列作为扇区名称
func renderPie(w io.Writer, spec Spec, names []string, values []float64) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(titleOpts(spec))
	data := make([]opts.PieData, 0, len(values))
	for i, v := range values {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		data = append(data, opts.PieData{Name: name, Value: v})
	}
	pie.AddSeries(spec.YColumns[0], data)
	return pie.Render(w)
}

func renderScatter(w io.Writer, spec Spec, x []string, series map[string][]float64) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(titleOpts(spec))
	scatter.SetXAxis(x)
	for _, col := range spec.YColumns {
		data := make([]opts.ScatterData, len(series[col]))
		for i, v := range series[col] {
			data[i] = opts.ScatterData{Value: v}
		}
		scatter.AddSeries(col, data)
	}
	return scatter.Render(w)
}

// renderHeatmap x 轴为 x 列取值，y 轴为各数值列名，格子值为对应数值
func renderHeatmap(w io.Writer, spec Spec, x []string, series map[string][]float64) error {
	hm := charts.NewHeatMap()
	lo, hi := rangeOf(series)
	hm.SetGlobalOptions(
		titleOpts(spec),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: x}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: spec.YColumns}),
		charts.WithVisualMapOpts(opts.VisualMap{Calculable: opts.Bool(true), Min: float32(lo), Max: float32(hi)}),
	)
	var data []opts.HeatMapData
	for yi, col := range spec.YColumns {
		for xi, v := range series[col] {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, v}})
		}
	}
	hm.AddSeries("heatmap", data)
	return hm.Render(w)
}

// renderBox 每个数值列汇总为一个五数概括箱体
func renderBox(w io.Writer, spec Spec, series map[string][]float64) error {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(titleOpts(spec))
	box.SetXAxis(spec.YColumns)
	data := make([]opts.BoxPlotData, 0, len(spec.YColumns))
	for _, col := range spec.YColumns {
		data = append(data, opts.BoxPlotData{Value: fiveNumber(series[col])})
	}
	box.AddSeries("boxplot", data)
	return box.Render(w)
}

// fiveNumber [min, Q1, median, Q3, max]
func fiveNumber(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{0, 0, 0, 0, 0}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		quantile(sorted, 0.25),
		quantile(sorted, 0.5),
		quantile(sorted, 0.75),
		sorted[len(sorted)-1],
	}
}

// quantile 线性插值分位数，输入须已排序
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

func rangeOf(series map[string][]float64) (float64, float64) {
	first := true
	var lo, hi float64
	for _, vals := range series {
		for _, v := range vals {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// columnStrings x 轴列的字符串取值；列名为空时使用行号
func columnStrings(table *schema.ResultTable, name string) ([]string, error) {
	if name == "" {
		out := make([]string, table.NumRows())
		for i := range out {
			out[i] = strconv.Itoa(i + 1)
		}
		return out, nil
	}
	vals := table.Column(name)
	if vals == nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "结果表中不存在列 %q", name)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out, nil
}

func columnFloats(table *schema.ResultTable, name string) ([]float64, error) {
	vals := table.Column(name)
	if vals == nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "结果表中不存在列 %q", name)
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := toFloat(v)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "列 %q 第 %d 行", name, i+1)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "%q 不是数值", x)
		}
		return f, nil
	case nil:
		return 0, pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "空值无法作图")
	default:
		return 0, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "无法转换 %T 为数值", v)
	}
}
