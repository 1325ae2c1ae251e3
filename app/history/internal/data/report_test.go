package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trial_radar/app/history/internal/biz"
	"github.com/iWorld-y/trial_radar/app/history/internal/conf"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/config"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/storage"
)

func TestReportRepo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	// trial_radar 先写入一条记录
	writer, err := storage.NewStorage(config.DBConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatal(err)
	}
	id, err := writer.SaveReport(context.Background(), &model.Report{
		Metadata: model.ReportMetadata{ReportType: "Patient Accessibility Analysis", Condition: "Lung Cancer"},
		Metrics: model.Metrics{
			TotalTrialsAnalyzed: 3,
			AverageBarrierScore: 1.1,
			BaselineComparison:  model.BaselineComparison{Baseline: 1.15, Status: "Broad Access", Delta: "-0.05"},
		},
		HighestTrial: model.HighestTrial{NCTID: "NCT02", FacilityLocation: model.UnknownFacility()},
	})
	if err != nil {
		t.Fatal(err)
	}
	writer.Close()

	d, cleanup, err := NewData(&conf.Data{Database: &conf.Database{Driver: "sqlite", Path: path}}, log.DefaultLogger)
	if err != nil {
		t.Fatalf("NewData() error = %v", err)
	}
	defer cleanup()
	repo := NewReportRepo(d, log.DefaultLogger)
	ctx := context.Background()

	list, err := repo.ListReports(ctx, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListReports() = %v, %v", list, err)
	}
	if list[0].ID != id || list[0].Status != "Broad Access" || list[0].CreatedAt == "" {
		t.Errorf("summary = %+v", list[0])
	}

	detail, err := repo.GetReport(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Report == nil || detail.Report.HighestTrial.NCTID != "NCT02" || detail.TopNCTID != "NCT02" {
		t.Errorf("detail = %+v", detail)
	}

	if _, err := repo.GetReport(ctx, "missing"); !errors.Is(err, biz.ErrReportNotFound) {
		t.Errorf("GetReport(missing) error = %v", err)
	}
	if _, err := repo.LatestReport(ctx, "Melanoma"); !errors.Is(err, biz.ErrReportNotFound) {
		t.Errorf("LatestReport(Melanoma) error = %v", err)
	}
	latest, err := repo.LatestReport(ctx, "Lung Cancer")
	if err != nil || latest.ID != id {
		t.Errorf("LatestReport() = %+v, %v", latest, err)
	}
}

func TestNewDataRequiresDatabase(t *testing.T) {
	if _, _, err := NewData(&conf.Data{}, log.DefaultLogger); err == nil {
		t.Fatal("expected error")
	}
}
