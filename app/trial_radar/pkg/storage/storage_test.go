package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/config"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(config.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testReport(condition string, avg float64) *model.Report {
	return &model.Report{
		Metadata: model.ReportMetadata{
			ReportType:      "Patient Accessibility Analysis",
			Condition:       condition,
			TrialType:       "Interventional",
			ReportingPeriod: model.ReportingPeriod{StartDate: "2025-12-01", EndDate: "2025-12-31"},
		},
		Metrics: model.Metrics{
			TotalTrialsAnalyzed: 3,
			AverageBarrierScore: avg,
			BaselineComparison:  model.BaselineComparison{Baseline: 1.15, Status: "Broad Access", Delta: "-0.05"},
		},
		HighestTrial: model.HighestTrial{
			NCTID:            "NCT02",
			BarrierScore:     1.5,
			Title:            "Top",
			FacilityLocation: model.UnknownFacility(),
		},
	}
}

func TestSaveAndLatestReport(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.LatestReport(ctx, "Lung Cancer"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LatestReport() on empty db error = %v", err)
	}

	firstID, err := s.SaveReport(ctx, testReport("Lung Cancer", 1.1))
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	secondID, err := s.SaveReport(ctx, testReport("Lung Cancer", 1.3))
	if err != nil {
		t.Fatal(err)
	}
	if firstID == secondID || firstID == "" {
		t.Fatalf("ids = %q, %q", firstID, secondID)
	}
	if _, err := s.SaveReport(ctx, testReport("Melanoma", 0.7)); err != nil {
		t.Fatal(err)
	}

	rec, err := s.LatestReport(ctx, "Lung Cancer")
	if err != nil {
		t.Fatalf("LatestReport() error = %v", err)
	}
	if rec.ID != secondID || rec.AverageBarrierScore != 1.3 {
		t.Fatalf("latest = %+v", rec)
	}
	if rec.TopNCTID != "NCT02" || rec.Country != "Unknown" || rec.Delta != "-0.05" {
		t.Errorf("record = %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Errorf("CreatedAt not set")
	}

	got, err := s.GetReport(ctx, firstID)
	if err != nil || got.AverageBarrierScore != 1.1 {
		t.Fatalf("GetReport() = %+v, %v", got, err)
	}
	if _, err := s.GetReport(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport(missing) error = %v", err)
	}

	var payload model.Report
	if err := json.Unmarshal([]byte(rec.Payload), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Metadata.Condition != "Lung Cancer" {
		t.Errorf("payload = %+v", payload.Metadata)
	}
}

func TestListReports(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	for _, c := range []string{"A", "B", "C"} {
		if _, err := s.SaveReport(ctx, testReport(c, 1)); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	recs, err := s.ListReports(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Condition != "C" || recs[1].Condition != "B" {
		t.Fatalf("recs = %+v", recs)
	}
}

func TestNewStorageUnknownDriver(t *testing.T) {
	if _, err := NewStorage(config.DBConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error")
	}
}
