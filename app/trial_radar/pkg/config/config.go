package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL    = "https://clinicaltrials.gov/api/v2"
	DefaultCondition  = "Lung Cancer"
	DefaultStudyType  = "INTERVENTIONAL"
	DefaultPageSize   = 100
	DefaultPageDelay  = time.Second
	DefaultTimeout    = 30
	DefaultBaseline   = 1.15
	DefaultReportFile = "lung_cancer_accessibility_report.json"
)

// Config 项目配置结构体
type Config struct {
	Trials  TrialsConfig  `yaml:"trials"`
	Scoring ScoringConfig `yaml:"scoring"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
}

// TrialsConfig 试验检索相关配置
type TrialsConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Condition string        `yaml:"condition"`
	StudyType string        `yaml:"study_type"`
	StartDate string        `yaml:"start_date"` // YYYY-MM-DD
	EndDate   string        `yaml:"end_date"`   // YYYY-MM-DD
	PageSize  int           `yaml:"page_size"`
	PageDelay time.Duration `yaml:"page_delay"` // 翻页之间的固定间隔
	Timeout   int           `yaml:"timeout"`    // 秒
}

// ScoringConfig 评分相关配置
type ScoringConfig struct {
	Baseline float64 `yaml:"baseline"`
}

// OutputConfig 输出相关配置
type OutputConfig struct {
	ReportFile string `yaml:"report_file"`
	HTMLFile   string `yaml:"html_file"` // 为空则不生成 HTML
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DBConfig 数据库相关配置，Driver 为空时不保存历史
type DBConfig struct {
	Driver   string `yaml:"driver"` // postgres 或 sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"` // sqlite 文件路径
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// 解码前预置默认基线，显式配置的 baseline: 0 不会被覆盖
	cfg := Config{Scoring: ScoringConfig{Baseline: DefaultBaseline}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults 为未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.Trials.BaseURL == "" {
		c.Trials.BaseURL = DefaultBaseURL
	}
	if c.Trials.Condition == "" {
		c.Trials.Condition = DefaultCondition
	}
	if c.Trials.StudyType == "" {
		c.Trials.StudyType = DefaultStudyType
	}
	if c.Trials.PageSize <= 0 {
		c.Trials.PageSize = DefaultPageSize
	}
	if c.Trials.PageDelay <= 0 {
		c.Trials.PageDelay = DefaultPageDelay
	}
	if c.Trials.Timeout <= 0 {
		c.Trials.Timeout = DefaultTimeout
	}
	if c.Output.ReportFile == "" {
		c.Output.ReportFile = DefaultReportFile
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if c.Trials.StartDate == "" || c.Trials.EndDate == "" {
		return errors.New("trials.start_date and trials.end_date are required")
	}
	start, err := time.Parse(time.DateOnly, c.Trials.StartDate)
	if err != nil {
		return fmt.Errorf("invalid trials.start_date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, c.Trials.EndDate)
	if err != nil {
		return fmt.Errorf("invalid trials.end_date: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("trials.end_date %s is before start_date %s", c.Trials.EndDate, c.Trials.StartDate)
	}
	if c.Scoring.Baseline < 0 {
		return fmt.Errorf("scoring.baseline must be non-negative, got %v", c.Scoring.Baseline)
	}

	switch c.DB.Driver {
	case "":
	case "postgres":
		if c.DB.Host == "" {
			return errors.New("db.host is required for postgres")
		}
	case "sqlite":
		if c.DB.Path == "" {
			return errors.New("db.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown db driver: %s", c.DB.Driver)
	}
	return nil
}
