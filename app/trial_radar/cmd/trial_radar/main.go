package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/config"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/ctgov"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/engine"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/logger"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/storage"
)

// flagconf 配置文件路径
var flagconf string

func init() {
	flag.StringVar(&flagconf, "conf", "app/trial_radar/configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer logger.Close()
	logger.Log.Info("启动试验门槛分析...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 历史数据库，可选
	var store *storage.Storage
	if cfg.DB.Driver != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅生成报告文件。", err)
		} else {
			store = s
			defer store.Close()
			logger.Log.Infof("已成功连接到数据库 (%s)", cfg.DB.Driver)
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过历史保存")
	}

	// 4. 运行
	client := ctgov.NewClient(cfg.Trials.BaseURL, cfg.Trials.Timeout)
	e := engine.NewEngine(cfg, client, store)
	if _, err := e.Run(ctx, os.Stdout); err != nil {
		if errors.Is(err, engine.ErrNoScoredTrials) {
			fmt.Println("No trials with valid eligibility criteria found.")
			return
		}
		logger.Log.Errorf("分析失败: %v", err)
		logger.Close()
		os.Exit(1)
	}

	logger.Log.Info("✅ 分析完成")
}
