package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/aggregate"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
)

const htmlTpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .Title }}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 860px; margin: 0 auto; padding: 20px; line-height: 1.6; color: #1e293b; background: #f8fafc; }
        .card { background: #fff; border-radius: 12px; padding: 24px; border: 1px solid #e2e8f0; box-shadow: 0 2px 4px rgba(0,0,0,0.05); }
        table { border-collapse: collapse; width: 100%; }
        th, td { border-bottom: 1px solid #e2e8f0; padding: 6px 10px; text-align: left; }
        .status-high { color: #991b1b; }
        .status-broad { color: #166534; }
    </style>
</head>
<body>
    <div class="card {{ .StatusClass }}">
{{ .Body }}
    </div>
</body>
</html>
`

var page = template.Must(template.New("report").Parse(htmlTpl))

// RenderHTML 将 Markdown 摘要渲染为完整 HTML 页面
func RenderHTML(r *model.Report) ([]byte, error) {
	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}

	statusClass := ""
	switch r.Metrics.BaselineComparison.Status {
	case aggregate.StatusHighSelectivity:
		statusClass = "status-high"
	case aggregate.StatusBroadAccess:
		statusClass = "status-broad"
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title       string
		StatusClass string
		Body        template.HTML
	}{
		Title:       r.Metadata.ReportType + " | " + r.Metadata.Condition,
		StatusClass: statusClass,
		Body:        template.HTML(body.String()),
	})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteHTML 渲染并写入 HTML 文件
func WriteHTML(path string, r *model.Report) error {
	data, err := RenderHTML(r)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}
