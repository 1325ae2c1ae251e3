package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/config"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/report"
)

// ErrNotFound 没有历史报告
var ErrNotFound = errors.New("report not found")

// Storage 报告历史存储，支持 postgres 与 sqlite
type Storage struct {
	db *sqlx.DB
}

// Record 一次运行保存的报告
type Record struct {
	ID                  string    `db:"id"`
	Condition           string    `db:"condition_name"`
	StartDate           string    `db:"start_date"`
	EndDate             string    `db:"end_date"`
	TrialsAnalyzed      int       `db:"trials_analyzed"`
	AverageBarrierScore float64   `db:"average_score"`
	Baseline            float64   `db:"baseline"`
	Status              string    `db:"status"`
	Delta               string    `db:"delta"`
	TopNCTID            string    `db:"top_nct_id"`
	TopTitle            string    `db:"top_title"`
	TopScore            float64   `db:"top_score"`
	FacilityName        string    `db:"facility_name"`
	City                string    `db:"city"`
	StateProvince       string    `db:"state_province"`
	Country             string    `db:"country"`
	Payload             string    `db:"payload"` // 完整 JSON 报告
	CreatedAt           time.Time `db:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS accessibility_reports (
	id              TEXT PRIMARY KEY,
	condition_name  TEXT NOT NULL,
	start_date      TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	trials_analyzed INTEGER NOT NULL,
	average_score   DOUBLE PRECISION NOT NULL,
	baseline        DOUBLE PRECISION NOT NULL,
	status          TEXT NOT NULL,
	delta           TEXT NOT NULL,
	top_nct_id      TEXT NOT NULL,
	top_title       TEXT NOT NULL,
	top_score       DOUBLE PRECISION NOT NULL,
	facility_name   TEXT NOT NULL,
	city            TEXT NOT NULL,
	state_province  TEXT NOT NULL,
	country         TEXT NOT NULL,
	payload         TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
)`

// NewStorage 按配置打开数据库并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		db, err = sqlx.Open("postgres", connStr)
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = sqlx.Open("sqlite", cfg.Path+"?_pragma=busy_timeout(5000)")
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unknown db driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveReport 保存一次运行的报告，返回记录 ID
func (s *Storage) SaveReport(ctx context.Context, r *model.Report) (string, error) {
	payload, err := report.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	h := r.HighestTrial
	rec := Record{
		ID:                  uuid.New().String(),
		Condition:           r.Metadata.Condition,
		StartDate:           r.Metadata.ReportingPeriod.StartDate,
		EndDate:             r.Metadata.ReportingPeriod.EndDate,
		TrialsAnalyzed:      r.Metrics.TotalTrialsAnalyzed,
		AverageBarrierScore: r.Metrics.AverageBarrierScore,
		Baseline:            r.Metrics.BaselineComparison.Baseline,
		Status:              r.Metrics.BaselineComparison.Status,
		Delta:               r.Metrics.BaselineComparison.Delta,
		TopNCTID:            h.NCTID,
		TopTitle:            h.Title,
		TopScore:            h.BarrierScore,
		FacilityName:        h.FacilityLocation.FacilityName,
		City:                h.FacilityLocation.City,
		StateProvince:       h.FacilityLocation.StateProvince,
		Country:             h.FacilityLocation.Country,
		Payload:             string(payload),
		CreatedAt:           time.Now().UTC(),
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO accessibility_reports (
			id, condition_name, start_date, end_date, trials_analyzed, average_score, baseline,
			status, delta, top_nct_id, top_title, top_score,
			facility_name, city, state_province, country, payload, created_at
		) VALUES (
			:id, :condition_name, :start_date, :end_date, :trials_analyzed, :average_score, :baseline,
			:status, :delta, :top_nct_id, :top_title, :top_score,
			:facility_name, :city, :state_province, :country, :payload, :created_at
		)`, rec)
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}
	return rec.ID, nil
}

// LatestReport 返回某个疾病最近一次保存的报告
func (s *Storage) LatestReport(ctx context.Context, condition string) (*Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, s.db.Rebind(`
		SELECT * FROM accessibility_reports
		WHERE condition_name = ?
		ORDER BY created_at DESC
		LIMIT 1`), condition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ListReports 按时间倒序列出历史报告
func (s *Storage) ListReports(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []Record
	err := s.db.SelectContext(ctx, &recs, s.db.Rebind(`
		SELECT * FROM accessibility_reports
		ORDER BY created_at DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// GetReport 按 ID 获取报告
func (s *Storage) GetReport(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, s.db.Rebind(`SELECT * FROM accessibility_reports WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
