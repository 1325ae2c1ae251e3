package model

// Unknown 缺失字段的占位值
const Unknown = "Unknown"

// Outcome 单步处理结果的类型标签
type Outcome int

const (
	// OK 正常完成
	OK Outcome = iota
	// Skipped 按规则主动跳过，不是错误
	Skipped
	// Degraded 失败但已用部分结果或占位值兜底
	Degraded
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Skipped:
		return "skipped"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// TrialRecord 从检索接口获取的原始试验记录
type TrialRecord struct {
	NCTID           string
	Title           string
	EligibilityText string // 原始入排标准文本，可能为空
}

// ScoredTrial 已计算门槛评分的试验
type ScoredTrial struct {
	NCTID          string
	Title          string
	Score          float64
	InclusionWords int
	ExclusionWords int
}

// FacilityInfo 试验首个研究中心的位置信息
type FacilityInfo struct {
	FacilityName  string `json:"facility_name"`
	City          string `json:"city"`
	StateProvince string `json:"state_province"`
	Country       string `json:"country"`
}

// UnknownFacility 返回所有字段均为 Unknown 的占位记录
func UnknownFacility() FacilityInfo {
	return FacilityInfo{
		FacilityName:  Unknown,
		City:          Unknown,
		StateProvince: Unknown,
		Country:       Unknown,
	}
}

// Report 可访问性分析报告
type Report struct {
	Metadata     ReportMetadata `json:"report_metadata"`
	Metrics      Metrics        `json:"analysis_metrics"`
	HighestTrial HighestTrial   `json:"highest_barrier_trial"`
}

// ReportMetadata 报告元信息
type ReportMetadata struct {
	ReportType      string          `json:"report_type"`
	Condition       string          `json:"condition"`
	TrialType       string          `json:"trial_type"`
	ReportingPeriod ReportingPeriod `json:"reporting_period"`
}

// ReportingPeriod 统计区间（闭区间，YYYY-MM-DD）
type ReportingPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Metrics 汇总指标
type Metrics struct {
	TotalTrialsAnalyzed int                `json:"total_trials_analyzed"`
	AverageBarrierScore float64            `json:"average_barrier_score"`
	BaselineComparison  BaselineComparison `json:"baseline_comparison"`
}

// BaselineComparison 与基线的对比
type BaselineComparison struct {
	Baseline float64 `json:"baseline"`
	Status   string  `json:"status"`
	Delta    string  `json:"delta"` // 带符号，例如 +0.12
}

// HighestTrial 门槛评分最高的试验
type HighestTrial struct {
	NCTID            string       `json:"nct_id"`
	BarrierScore     float64      `json:"barrier_score"`
	Title            string       `json:"title"`
	InclusionWords   int          `json:"inclusion_word_count"`
	ExclusionWords   int          `json:"exclusion_word_count"`
	FacilityLocation FacilityInfo `json:"facility_location"`
}
