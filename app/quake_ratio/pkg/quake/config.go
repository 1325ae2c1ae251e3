package quake

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	_ "github.com/go-kratos/kratos/v2/encoding/yaml"
)

// TimeLayout USGS 查询使用的时间格式 (UTC)
const TimeLayout = "2006-01-02T15:04:05"

const (
	DefaultMinMagnitude = 4.5
	DefaultChartFile    = "output/quake_ratio.html"
)

// Config quake_ratio 配置
type Config struct {
	USGS      USGSConfig   `json:"usgs"`
	Window    WindowConfig `json:"window"`
	Output    OutputConfig `json:"output"`
	Mountains []Mountain   `json:"mountains"`
}

// USGSConfig 数据源配置
type USGSConfig struct {
	BaseURL      string  `json:"base_url"`
	Timeout      int     `json:"timeout"` // 秒
	MinMagnitude float64 `json:"min_magnitude"`
}

// WindowConfig 查询时间窗口，通常是最近两次满月之间
type WindowConfig struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	ChartFile string `json:"chart_file"`
}

// Mountain 地名关键字与该地区最高山峰高度 (米)
type Mountain struct {
	Keyword string  `json:"keyword"`
	Height  float64 `json:"height"`
}

// DefaultMountains 默认高度表，按顺序匹配
func DefaultMountains() []Mountain {
	return []Mountain{
		{Keyword: "Papua New Guinea", Height: 4509},
		{Keyword: "Indonesia", Height: 4884},
		{Keyword: "Fiji", Height: 1324},
		{Keyword: "Timor Leste", Height: 2963},
		{Keyword: "Kermadec", Height: 516},
		{Keyword: "Colombia", Height: 5775},
		{Keyword: "Japan", Height: 3776},
		{Keyword: "Tonga", Height: 1030},
		{Keyword: "Chile", Height: 6893},
		{Keyword: "Argentina", Height: 6967},
		{Keyword: "Vanuatu", Height: 1879},
	}
}

// LoadConfig 通过 kratos config 读取 YAML 配置文件
func LoadConfig(path string) (*Config, error) {
	c := config.New(
		config.WithSource(
			file.NewSource(path),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var cfg Config
	if err := c.Scan(&cfg); err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults 为未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.USGS.MinMagnitude == 0 {
		c.USGS.MinMagnitude = DefaultMinMagnitude
	}
	if c.Output.ChartFile == "" {
		c.Output.ChartFile = DefaultChartFile
	}
	if len(c.Mountains) == 0 {
		c.Mountains = DefaultMountains()
	}
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if c.Window.StartTime == "" || c.Window.EndTime == "" {
		return errors.New("window.start_time and window.end_time are required")
	}
	start, err := time.Parse(TimeLayout, c.Window.StartTime)
	if err != nil {
		return fmt.Errorf("invalid window.start_time: %w", err)
	}
	end, err := time.Parse(TimeLayout, c.Window.EndTime)
	if err != nil {
		return fmt.Errorf("invalid window.end_time: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("window.end_time %s must be after start_time %s", c.Window.EndTime, c.Window.StartTime)
	}
	for i, m := range c.Mountains {
		if strings.TrimSpace(m.Keyword) == "" {
			return fmt.Errorf("mountains[%d]: keyword is required", i)
		}
		if m.Height <= 0 {
			return fmt.Errorf("mountains[%d] %s: height must be positive", i, m.Keyword)
		}
	}
	return nil
}
