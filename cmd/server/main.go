package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"FinDataCollector/internal/api"
	"FinDataCollector/internal/collector"
	"FinDataCollector/internal/config"
	"FinDataCollector/internal/logging"
	"FinDataCollector/internal/recorder"
	"FinDataCollector/internal/scheduler"
	"FinDataCollector/internal/service"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.New("info", "text").WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("config validation")
	}
	logger.Info("FinDataCollector starting...")

	fetcher, err := collector.NewFetcher(
		cfg.DataSource.Provider,
		cfg.DataSource.BaseURL,
		cfg.Proxy,
		time.Duration(cfg.DataSource.TimeoutSeconds)*time.Second,
		cfg.DataSource.RequestsPerSecond,
	)
	if err != nil {
		logger.WithError(err).Fatal("init fetcher")
	}
	logger.WithField("provider", fetcher.Name()).Info("data source ready")

	// Init recorder
	var rec recorder.Recorder
	if path := cfg.SQLitePath(); path != "" {
		sr, err := recorder.NewSQLiteRecorder(path, logger)
		if err != nil {
			logger.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	svc := service.New(fetcher, cfg.DataSource.Concurrency, rec, logger, service.Options{
		DataDir:        cfg.Export.DataDir,
		MaxChartPoints: cfg.Export.MaxChartPoints,
		PreviewRows:    cfg.PreviewRows(),
	})
	if err := os.MkdirAll(cfg.Export.DataDir, 0o755); err != nil {
		logger.WithError(err).Fatal("create data dir")
	}

	sched := scheduler.NewScheduler(svc, cfg.Housekeeping.RetentionDays, logger)
	if err := sched.RegisterAll(cfg.Housekeeping.CleanupCron); err != nil {
		logger.WithError(err).Fatal("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	srv := api.NewHTTPServer(&api.Config{
		Handler:      api.NewHandler(svc, logger),
		Logger:       logger,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Production:   cfg.Server.Production,
		Addr:         cfg.Server.Addr,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if cfg.Server.Production {
			logger.Info("🚀 금융 데이터 수집 시스템이 프로덕션 모드로 시작되었습니다.")
		} else {
			logger.Info("🚀 금융 데이터 수집 시스템이 시작되었습니다.")
		}
		logger.WithField("addr", cfg.Server.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("http server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("http server shutdown")
	}
	logger.Info("FinDataCollector stopped")
}
