package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trial_radar/app/quake_ratio/pkg/quake"
	"github.com/iWorld-y/trial_radar/app/quake_ratio/pkg/usgs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 程序名称
	Name = "quake_ratio"
	// Version 版本号
	Version string
	// flagconf 配置文件路径
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/quake_ratio/configs/quake.yaml", "config path, eg: -conf quake.yaml")
}

func main() {
	flag.Parse()
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", Name,
		"service.version", Version,
	)
	helper := log.NewHelper(logger)

	cfg, err := quake.LoadConfig(flagconf)
	if err != nil {
		helper.Fatalf("无法加载配置文件: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := usgs.NewClient(cfg.USGS.BaseURL, cfg.USGS.Timeout)
	events, err := client.Query(ctx, &usgs.QueryRequest{
		StartTime:    cfg.Window.StartTime,
		EndTime:      cfg.Window.EndTime,
		MinMagnitude: cfg.USGS.MinMagnitude,
	})
	if err != nil {
		helper.Fatalf("查询地震数据失败: %v", err)
	}
	helper.Infof("获取 %d 条 M%.1f+ 地震记录 (%s ~ %s)", len(events), cfg.USGS.MinMagnitude, cfg.Window.StartTime, cfg.Window.EndTime)

	deepest := quake.DeepestPerDay(events)
	ratios, skipped := quake.Ratios(deepest, cfg.Mountains)
	for _, s := range skipped {
		helper.Debugf("跳过 %s [%s]: %s", s.Date, s.Place, s.Reason)
	}
	helper.Infof("%d 天有地震记录，其中 %d 天可计算比值", len(deepest), len(ratios))

	for _, r := range ratios {
		helper.Infof("%s %-40s %s %6.0f m / %8.0f m = %.4f", r.Date, r.Place, r.Keyword, r.Height, r.DepthMeters, r.Value)
	}

	if err := quake.WriteChart(cfg.Output.ChartFile, ratios, cfg.Window.StartTime, cfg.Window.EndTime); err != nil {
		helper.Fatalf("生成图表失败: %v", err)
	}
	helper.Infof("✅ 图表已生成: %s", cfg.Output.ChartFile)
}
