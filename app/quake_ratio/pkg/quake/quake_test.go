package quake

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/trial_radar/app/quake_ratio/pkg/usgs"
)

func at(day, hour int) time.Time {
	return time.Date(2025, 12, day, hour, 0, 0, 0, time.UTC)
}

func TestDeepestPerDay(t *testing.T) {
	events := []usgs.Event{
		{ID: "a", Time: at(6, 20), Depth: 10},
		{ID: "b", Time: at(5, 3), Depth: 35},
		{ID: "c", Time: at(6, 1), Depth: 120},
		{ID: "d", Time: at(6, 2), Depth: 120},
		{ID: "e", Time: at(5, 23), Depth: 12},
		// 本地时间是 12-07，UTC 仍是 12-06
		{ID: "f", Time: time.Date(2025, 12, 7, 5, 0, 0, 0, time.FixedZone("X", 9*3600)), Depth: 5},
	}

	got := DeepestPerDay(events)
	var ids []string
	for _, ev := range got {
		ids = append(ids, ev.ID)
	}
	if strings.Join(ids, ",") != "b,c" {
		t.Fatalf("DeepestPerDay() = %v, want [b c]", ids)
	}
	if DeepestPerDay(nil) == nil || len(DeepestPerDay(nil)) != 0 {
		t.Errorf("empty input should give empty slice")
	}
}

func TestHeightFor(t *testing.T) {
	mountains := DefaultMountains()
	tests := []struct {
		place string
		want  string
		ok    bool
	}{
		{"120 km NNE of Tobelo, Indonesia", "Indonesia", true},
		{"south of the fiji islands", "Fiji", true},
		{"Kermadec Islands, New Zealand", "Kermadec", true},
		{"Kepulauan Barat Daya, Indonesia (Timor Leste border)", "Indonesia", true},
		{"central Mid-Atlantic Ridge", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		m, ok := HeightFor(tt.place, mountains)
		if ok != tt.ok || m.Keyword != tt.want {
			t.Errorf("HeightFor(%q) = %q, %v; want %q, %v", tt.place, m.Keyword, ok, tt.want, tt.ok)
		}
	}
}

func TestRatios(t *testing.T) {
	deepest := []usgs.Event{
		{ID: "fj", Time: at(5, 0), Place: "Fiji region", Depth: 662},
		{ID: "mar", Time: at(6, 0), Place: "northern Mid-Atlantic Ridge", Depth: 10},
		{ID: "jp", Time: at(7, 0), Place: "off the east coast of Honshu, Japan", Depth: 0},
		{ID: "cl", Time: at(8, 0), Place: "Antofagasta, Chile", Depth: 100},
	}
	ratios, skipped := Ratios(deepest, DefaultMountains())

	if len(ratios) != 2 || ratios[0].EventID != "fj" || ratios[1].EventID != "cl" {
		t.Fatalf("ratios = %+v", ratios)
	}
	if want := 1324.0 / 662000.0; math.Abs(ratios[0].Value-want) > 1e-12 {
		t.Errorf("fiji ratio = %v, want %v", ratios[0].Value, want)
	}
	if ratios[1].Value != 6893.0/100000.0 || ratios[1].DepthMeters != 100000 || ratios[1].Date != "2025-12-08" {
		t.Errorf("chile = %+v", ratios[1])
	}

	if len(skipped) != 2 || skipped[0].Reason != ReasonUnknownPlace || skipped[1].Reason != ReasonNonPositiveDepth {
		t.Errorf("skipped = %+v", skipped)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Config{Window: WindowConfig{StartTime: "2025-12-05T00:00:00", EndTime: "2026-01-03T23:59:59"}}
		c.ApplyDefaults()
		return c
	}

	c := base()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if c.USGS.MinMagnitude != 4.5 || len(c.Mountains) != 11 || c.Output.ChartFile == "" {
		t.Errorf("defaults = %+v", c)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing window", func(c *Config) { c.Window.EndTime = "" }},
		{"bad layout", func(c *Config) { c.Window.StartTime = "2025-12-05" }},
		{"reversed", func(c *Config) { c.Window.StartTime, c.Window.EndTime = c.Window.EndTime, c.Window.StartTime }},
		{"zero height", func(c *Config) { c.Mountains = []Mountain{{Keyword: "Fiji"}} }},
		{"empty keyword", func(c *Config) { c.Mountains = []Mountain{{Height: 100}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quake.yaml")
	content := `
usgs:
  timeout: 10
window:
  start_time: "2025-12-05T00:00:00"
  end_time: "2026-01-03T23:59:59"
mountains:
  - keyword: Fiji
    height: 1324
  - keyword: Tonga
    height: 1030
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.USGS.Timeout != 10 || cfg.USGS.MinMagnitude != 4.5 {
		t.Errorf("USGS = %+v", cfg.USGS)
	}
	if len(cfg.Mountains) != 2 || cfg.Mountains[1] != (Mountain{Keyword: "Tonga", Height: 1030}) {
		t.Errorf("Mountains = %+v", cfg.Mountains)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderChart(t *testing.T) {
	ratios := []Ratio{
		{Date: "2025-12-05", Place: "Fiji <region>", Keyword: "Fiji", Height: 1324, DepthMeters: 662000, Value: 0.002},
		{Date: "2025-12-08", Place: "Chile", Keyword: "Chile", Height: 6893, DepthMeters: 100000, Value: 0.06893},
	}
	data, err := RenderChart(ratios, "2025-12-05T00:00:00", "2026-01-03T23:59:59")
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	for _, want := range []string{ChartTitle, "2025-12-05", "0.0689", "width: 100%", "Height/Depth Ratio"} {
		if !strings.Contains(page, want) {
			t.Errorf("chart missing %q", want)
		}
	}
	if strings.Contains(page, "<region>") {
		t.Errorf("place was not escaped")
	}

	empty, err := RenderChart(nil, "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(empty), "No events matched") {
		t.Errorf("empty chart = %s", empty)
	}

	path := filepath.Join(t.TempDir(), "out", "chart.html")
	if err := WriteChart(path, ratios, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
