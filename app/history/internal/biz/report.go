package biz

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var (
	// ErrReportNotFound 报告不存在
	ErrReportNotFound = errors.NotFound("REPORT_NOT_FOUND", "report not found")
	// ErrMissingCondition 查询最新报告时未指定疾病
	ErrMissingCondition = errors.BadRequest("MISSING_CONDITION", "condition is required")
)

// ReportSummary 历史报告摘要
type ReportSummary struct {
	ID                  string  `json:"id"`
	Condition           string  `json:"condition"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	TrialsAnalyzed      int     `json:"total_trials_analyzed"`
	AverageBarrierScore float64 `json:"average_barrier_score"`
	Status              string  `json:"status"`
	Delta               string  `json:"delta"`
	TopNCTID            string  `json:"top_nct_id"`
	CreatedAt           string  `json:"created_at"`
}

// ReportDetail 摘要加完整报告
type ReportDetail struct {
	ReportSummary
	Report *model.Report `json:"report"`
}

type ReportRepo interface {
	ListReports(ctx context.Context, limit int) ([]*ReportSummary, error)
	GetReport(ctx context.Context, id string) (*ReportDetail, error)
	LatestReport(ctx context.Context, condition string) (*ReportDetail, error)
}

type ReportUseCase struct {
	repo ReportRepo
	log  *log.Helper
}

func NewReportUseCase(repo ReportRepo, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{repo: repo, log: log.NewHelper(logger)}
}

// List 按时间倒序列出报告，limit 超出范围时取默认值或上限
func (uc *ReportUseCase) List(ctx context.Context, limit int) ([]*ReportSummary, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return uc.repo.ListReports(ctx, limit)
}

func (uc *ReportUseCase) Get(ctx context.Context, id string) (*ReportDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrReportNotFound
	}
	return uc.repo.GetReport(ctx, id)
}

// Latest 某个疾病最近一次运行的报告
func (uc *ReportUseCase) Latest(ctx context.Context, condition string) (*ReportDetail, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, ErrMissingCondition
	}
	d, err := uc.repo.LatestReport(ctx, condition)
	if err != nil {
		uc.log.WithContext(ctx).Debugf("latest report for %q: %v", condition, err)
		return nil, err
	}
	return d, nil
}
