package quake

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
)

const chartTpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .Title }}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; color: #1e293b; background: #f8fafc; }
        h1 { font-size: 1.6rem; text-align: center; }
        .chart { display: grid; grid-template-columns: 110px 1fr 90px; gap: 6px 10px; align-items: center; }
        .axis { font-weight: bold; color: #64748b; }
        .bar-track { background: #e2e8f0; border-radius: 4px; height: 18px; }
        .bar { background: skyblue; height: 18px; border-radius: 4px; }
        .value { font-variant-numeric: tabular-nums; }
        .empty { text-align: center; color: #64748b; }
    </style>
</head>
<body>
    <h1>{{ .Title }}</h1>
    <p class="empty">{{ .Start }} ~ {{ .End }}</p>
    {{if .Rows}}
    <div class="chart">
        <div class="axis">Date</div><div class="axis">Height/Depth Ratio</div><div></div>
        {{range .Rows}}
        <div title="{{ .Place }}">{{ .Date }}</div>
        <div class="bar-track" title="{{ .Keyword }}: {{ .Height }} m / {{ .DepthMeters }} m"><div class="bar" style="width: {{ .Width }}%"></div></div>
        <div class="value">{{ printf "%.4f" .Value }}</div>
        {{end}}
    </div>
    {{else}}
    <p class="empty">No events matched a known mountain height.</p>
    {{end}}
</body>
</html>
`

// ChartTitle 图表标题
const ChartTitle = "Mountain Height to Earthquake Depth Ratio by Day"

var chart = template.Must(template.New("chart").Parse(chartTpl))

type chartRow struct {
	Ratio
	Width float64 // 相对最大值的百分比
}

// RenderChart 将比值渲染为水平条形图 HTML 页面
func RenderChart(ratios []Ratio, start, end string) ([]byte, error) {
	var max float64
	for _, r := range ratios {
		if r.Value > max {
			max = r.Value
		}
	}

	rows := make([]chartRow, 0, len(ratios))
	for _, r := range ratios {
		row := chartRow{Ratio: r}
		if max > 0 {
			row.Width = r.Value / max * 100
		}
		rows = append(rows, row)
	}

	var out bytes.Buffer
	err := chart.Execute(&out, struct {
		Title string
		Start string
		End   string
		Rows  []chartRow
	}{
		Title: ChartTitle,
		Start: start,
		End:   end,
		Rows:  rows,
	})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteChart 渲染并写入图表文件
func WriteChart(path string, ratios []Ratio, start, end string) error {
	data, err := RenderChart(ratios, start, end)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
