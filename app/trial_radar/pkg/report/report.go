package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/aggregate"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
)

const (
	ReportType = "Patient Accessibility Analysis"
	Separator  = "================================================================================"
)

// Meta 报告元信息输入
type Meta struct {
	Condition string
	TrialType string
	StartDate string
	EndDate   string
}

// Build 在内存中组装完整报告
func Build(meta Meta, s *aggregate.Summary, facility model.FacilityInfo) *model.Report {
	return &model.Report{
		Metadata: model.ReportMetadata{
			ReportType: ReportType,
			Condition:  meta.Condition,
			TrialType:  meta.TrialType,
			ReportingPeriod: model.ReportingPeriod{
				StartDate: meta.StartDate,
				EndDate:   meta.EndDate,
			},
		},
		Metrics: model.Metrics{
			TotalTrialsAnalyzed: s.Count,
			AverageBarrierScore: Round2(s.Average),
			BaselineComparison: model.BaselineComparison{
				Baseline: s.Baseline,
				Status:   s.Status,
				Delta:    SignedDelta(s.Delta),
			},
		},
		HighestTrial: model.HighestTrial{
			NCTID:            s.Highest.NCTID,
			BarrierScore:     Round2(s.Highest.Score),
			Title:            s.Highest.Title,
			InclusionWords:   s.Highest.InclusionWords,
			ExclusionWords:   s.Highest.ExclusionWords,
			FacilityLocation: facility,
		},
	}
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SignedDelta 带符号格式化差值，例如 +0.12、-0.05
func SignedDelta(d float64) string {
	return fmt.Sprintf("%+.2f", d)
}

// Marshal 以两空格缩进序列化报告，不转义非 ASCII 和 HTML 字符
func Marshal(r *model.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Print 在分隔线之间打印完整 JSON 报告
func Print(w io.Writer, data []byte) error {
	_, err := fmt.Fprintf(w, "\n%s\nFINAL JSON REPORT:\n%s\n%s", Separator, Separator, data)
	return err
}

// Emit 打印报告并写入文件，写文件前报告已完整序列化
func Emit(w io.Writer, path string, r *model.Report) error {
	data, err := Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := Print(w, data); err != nil {
		return fmt.Errorf("print report: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Markdown 生成报告的 Markdown 摘要
func Markdown(r *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", r.Metadata.ReportType, r.Metadata.Condition)
	fmt.Fprintf(&b, "- Trial type: %s\n", r.Metadata.TrialType)
	fmt.Fprintf(&b, "- Reporting period: %s to %s\n\n", r.Metadata.ReportingPeriod.StartDate, r.Metadata.ReportingPeriod.EndDate)

	m := r.Metrics
	fmt.Fprintf(&b, "## Analysis Metrics\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Trials analyzed | %d |\n", m.TotalTrialsAnalyzed)
	fmt.Fprintf(&b, "| Average barrier score | %.2f |\n", m.AverageBarrierScore)
	fmt.Fprintf(&b, "| Baseline | %.2f |\n", m.BaselineComparison.Baseline)
	fmt.Fprintf(&b, "| Delta | %s |\n", m.BaselineComparison.Delta)
	fmt.Fprintf(&b, "| Status | **%s** |\n\n", m.BaselineComparison.Status)

	h := r.HighestTrial
	f := h.FacilityLocation
	fmt.Fprintf(&b, "## Highest Barrier Trial\n\n")
	fmt.Fprintf(&b, "[%s](https://clinicaltrials.gov/study/%s): %s\n\n", h.NCTID, h.NCTID, escapeMarkdown(h.Title))
	fmt.Fprintf(&b, "- Barrier score: %.2f (%d exclusion / %d inclusion words)\n", h.BarrierScore, h.ExclusionWords, h.InclusionWords)
	fmt.Fprintf(&b, "- Facility: %s\n", escapeMarkdown(f.FacilityName))
	fmt.Fprintf(&b, "- Location: %s, %s, %s\n", escapeMarkdown(f.City), escapeMarkdown(f.StateProvince), escapeMarkdown(f.Country))
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "|", `\|`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
