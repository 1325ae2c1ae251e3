package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trial_radar/app/history/internal/biz"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/storage"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

func NewReportRepo(data *Data, logger log.Logger) biz.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) ListReports(ctx context.Context, limit int) ([]*biz.ReportSummary, error) {
	recs, err := r.data.store.ListReports(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*biz.ReportSummary, 0, len(recs))
	for i := range recs {
		s := toSummary(&recs[i])
		out = append(out, &s)
	}
	return out, nil
}

func (r *reportRepo) GetReport(ctx context.Context, id string) (*biz.ReportDetail, error) {
	rec, err := r.data.store.GetReport(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return r.toDetail(rec)
}

func (r *reportRepo) LatestReport(ctx context.Context, condition string) (*biz.ReportDetail, error) {
	rec, err := r.data.store.LatestReport(ctx, condition)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return r.toDetail(rec)
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return biz.ErrReportNotFound
	}
	return err
}

func (r *reportRepo) toDetail(rec *storage.Record) (*biz.ReportDetail, error) {
	var rep model.Report
	if err := json.Unmarshal([]byte(rec.Payload), &rep); err != nil {
		r.log.Errorf("report %s has invalid payload: %v", rec.ID, err)
		return nil, err
	}
	return &biz.ReportDetail{ReportSummary: toSummary(rec), Report: &rep}, nil
}

func toSummary(rec *storage.Record) biz.ReportSummary {
	return biz.ReportSummary{
		ID:                  rec.ID,
		Condition:           rec.Condition,
		StartDate:           rec.StartDate,
		EndDate:             rec.EndDate,
		TrialsAnalyzed:      rec.TrialsAnalyzed,
		AverageBarrierScore: rec.AverageBarrierScore,
		Status:              rec.Status,
		Delta:               rec.Delta,
		TopNCTID:            rec.TopNCTID,
		CreatedAt:           rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}
