package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/aggregate"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/config"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/facility"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/fetcher"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/logger"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/registry"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/report"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/scorer"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/storage"
)

// TrialType 报告中展示的试验类型
const TrialType = "Interventional"

// ErrNoScoredTrials 没有可评分的试验，不生成报告
var ErrNoScoredTrials = aggregate.ErrNoScoredTrials

// Engine 核心处理引擎
type Engine struct {
	cfg     *config.Config
	reg     registry.Registry
	fetcher *fetcher.Fetcher
	store   *storage.Storage
}

// NewEngine 创建引擎实例，store 为 nil 时不保存历史
func NewEngine(cfg *config.Config, reg registry.Registry, store *storage.Storage) *Engine {
	return &Engine{
		cfg:     cfg,
		reg:     reg,
		fetcher: fetcher.NewFetcher(reg, cfg.Trials.PageDelay),
		store:   store,
	}
}

// Run 执行一次完整分析：检索、评分、汇总、查询研究中心、输出报告
func (e *Engine) Run(ctx context.Context, stdout io.Writer) (*model.Report, error) {
	t := e.cfg.Trials
	logger.Log.Infof("开始检索 [%s] 试验，时间范围 %s ~ %s", t.Condition, t.StartDate, t.EndDate)

	// 1. 检索
	fetched := e.fetcher.FetchAll(ctx, fetcher.Query{
		Condition: t.Condition,
		StudyType: t.StudyType,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		PageSize:  t.PageSize,
	})
	if fetched.Outcome == model.Degraded {
		logger.Log.Warnf("检索未完成 (%d 页)，使用已获取的 %d 条记录: %v", fetched.Pages, len(fetched.Trials), fetched.Err)
	} else {
		logger.Log.Infof("检索完成，共 %d 页 %d 条记录", fetched.Pages, len(fetched.Trials))
	}

	// 2. 评分
	scored := make([]model.ScoredTrial, 0, len(fetched.Trials))
	for _, tr := range fetched.Trials {
		st, res, ok := scorer.ScoreTrial(tr)
		if !ok {
			logger.Log.Debugf("跳过试验 [%s]: %s", tr.NCTID, res.Reason)
			continue
		}
		scored = append(scored, st)
	}
	logger.Log.Infof("成功评分 %d / %d 条试验", len(scored), len(fetched.Trials))

	// 3. 汇总
	summary, err := aggregate.Summarize(scored, e.cfg.Scoring.Baseline)
	if err != nil {
		return nil, err
	}

	// 4. 最高门槛试验的研究中心
	loc := facility.Lookup(ctx, e.reg, summary.Highest.NCTID)
	switch loc.Outcome {
	case model.Skipped:
		logger.Log.Infof("试验 [%s] 没有研究中心信息", summary.Highest.NCTID)
	case model.Degraded:
		logger.Log.Warnf("查询试验 [%s] 研究中心失败: %v", summary.Highest.NCTID, loc.Err)
	}

	// 5. 输出
	r := report.Build(report.Meta{
		Condition: t.Condition,
		TrialType: TrialType,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
	}, summary, loc.Info)

	if err := report.Emit(stdout, e.cfg.Output.ReportFile, r); err != nil {
		return nil, fmt.Errorf("emit report: %w", err)
	}
	logger.Log.Infof("报告已保存: %s", e.cfg.Output.ReportFile)

	if e.cfg.Output.HTMLFile != "" {
		if err := report.WriteHTML(e.cfg.Output.HTMLFile, r); err != nil {
			logger.Log.Errorf("生成 HTML 失败: %v", err)
		} else {
			logger.Log.Infof("HTML 报告已保存: %s", e.cfg.Output.HTMLFile)
		}
	}

	e.saveHistory(ctx, r)
	return r, nil
}

// saveHistory 与上一次运行比较并保存本次报告，失败只记录日志
func (e *Engine) saveHistory(ctx context.Context, r *model.Report) {
	if e.store == nil {
		return
	}

	prev, err := e.store.LatestReport(ctx, r.Metadata.Condition)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Log.Info("没有历史报告可供比较")
	case err != nil:
		logger.Log.Errorf("读取历史报告失败: %v", err)
	default:
		logger.Log.Infof("与上次运行 (%s) 相比平均分变化 %s: %.2f -> %.2f",
			prev.CreatedAt.Format("2006-01-02 15:04:05"),
			report.SignedDelta(r.Metrics.AverageBarrierScore-prev.AverageBarrierScore),
			prev.AverageBarrierScore, r.Metrics.AverageBarrierScore)
	}

	id, err := e.store.SaveReport(ctx, r)
	if err != nil {
		logger.Log.Errorf("保存报告失败: %v", err)
		return
	}
	logger.Log.Infof("报告已保存到数据库 [%s]", id)
}
