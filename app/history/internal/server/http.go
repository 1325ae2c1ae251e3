package server

import (
	"context"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/trial_radar/app/history/internal/biz"
	"github.com/iWorld-y/trial_radar/app/history/internal/conf"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/report"
)

// NewHTTPServer 注册历史报告查询接口和 HTML 报告页面
func NewHTTPServer(c *conf.Server, uc *biz.ReportUseCase, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	h := &reportHandler{uc: uc, log: log.NewHelper(logger)}

	r := srv.Route("/")
	r.GET("/api/reports", h.list)
	// latest 需要先于 {id} 注册
	r.GET("/api/reports/latest", h.latest)
	r.GET("/api/reports/{id}", h.get)
	r.GET("/reports/{id}", h.page)

	return srv
}

type reportHandler struct {
	uc  *biz.ReportUseCase
	log *log.Helper
}

type listReply struct {
	Reports []*biz.ReportSummary `json:"reports"`
}

func (h *reportHandler) list(ctx http.Context) error {
	limit, _ := strconv.Atoi(ctx.Query().Get("limit"))
	m := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.uc.List(c, limit)
	})
	out, err := m(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, &listReply{Reports: out.([]*biz.ReportSummary)})
}

func (h *reportHandler) latest(ctx http.Context) error {
	condition := ctx.Query().Get("condition")
	m := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.uc.Latest(c, condition)
	})
	out, err := m(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *reportHandler) get(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	m := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.uc.Get(c, id)
	})
	out, err := m(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// page 以 HTML 形式展示单份报告
func (h *reportHandler) page(ctx http.Context) error {
	d, err := h.uc.Get(ctx, ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	data, err := report.RenderHTML(d.Report)
	if err != nil {
		h.log.Errorf("render report %s: %v", d.ID, err)
		return err
	}
	return ctx.Blob(200, "text/html; charset=utf-8", data)
}
