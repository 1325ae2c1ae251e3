package fetcher

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/logger"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/registry"
)

// Query 一次完整检索的参数
type Query struct {
	Condition string
	StudyType string
	StartDate string
	EndDate   string
	PageSize  int
}

// Result 检索结果。Outcome 为 Degraded 时 Trials 是中途失败前已获取的部分，Err 记录原因
type Result struct {
	Trials  []model.TrialRecord
	Pages   int
	Outcome model.Outcome
	Err     error
}

// Fetcher 按续页令牌逐页拉取试验记录
type Fetcher struct {
	reg     registry.Registry
	limiter *rate.Limiter
}

// NewFetcher 创建 Fetcher，pageDelay 为上一页响应返回到下一页请求发出之间的固定间隔
func NewFetcher(reg registry.Registry, pageDelay time.Duration) *Fetcher {
	limit := rate.Inf
	if pageDelay > 0 {
		limit = rate.Every(pageDelay)
	}
	return &Fetcher{
		reg:     reg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// rest 从收到响应时重新计时，下一次 Wait 等满一个 pageDelay
func (f *Fetcher) rest() {
	f.limiter = rate.NewLimiter(f.limiter.Limit(), 1)
	f.limiter.Allow()
}

// FetchAll 拉取全部页面。任何一页失败都会结束循环并保留已获取的记录，不返回错误
func (f *Fetcher) FetchAll(ctx context.Context, q Query) Result {
	res := Result{Outcome: model.OK}
	token := ""

	for {
		if err := f.limiter.Wait(ctx); err != nil {
			res.Outcome = model.Degraded
			res.Err = err
			return res
		}

		page, err := f.reg.SearchStudies(ctx, &registry.SearchRequest{
			Condition: q.Condition,
			StudyType: q.StudyType,
			StartDate: q.StartDate,
			EndDate:   q.EndDate,
			PageSize:  q.PageSize,
			PageToken: token,
		})
		f.rest()
		if err != nil {
			logger.Log.Warnf("检索第 %d 页失败，保留已获取的 %d 条记录: %v", res.Pages+1, len(res.Trials), err)
			res.Outcome = model.Degraded
			res.Err = err
			return res
		}
		res.Pages++

		for _, s := range page.Studies {
			res.Trials = append(res.Trials, model.TrialRecord{
				NCTID:           s.NCTID,
				Title:           s.Title,
				EligibilityText: s.EligibilityText,
			})
		}
		logger.Log.Infof("获取 %d 条试验记录 (累计: %d)", len(page.Studies), len(res.Trials))

		if page.NextPageToken == "" {
			return res
		}
		token = page.NextPageToken
	}
}
