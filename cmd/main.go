package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/data"
	"github.com/qrenard/patrimoine/data/cache"
	"github.com/qrenard/patrimoine/data/repository"
	"github.com/qrenard/patrimoine/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/qrenard/patrimoine/internal/externalApi/quoteApi"
	"github.com/qrenard/patrimoine/internal/externalApi/tickerApi"
	"github.com/qrenard/patrimoine/internal/reportGenerator/xlsxGenerator"
	"github.com/qrenard/patrimoine/internal/scheduler"
	"github.com/qrenard/patrimoine/internal/service/portfolioService"
	"github.com/qrenard/patrimoine/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := repository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	quoteApiClient := quoteApi.New(cfg)
	tickerApiClient := tickerApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	var cloudStorage portfolioService.CloudStorage
	if cfg.GoogleDrive.Enabled {
		cloudStorage = googleDriveApi.New(ctx, cfg)
	}

	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, quoteApiClient, tickerApiClient, reportGenerator, cloudStorage)

	sched := scheduler.New()
	sched.NewCrontabJob("portfolio history sampling", portfolioSrv.RecordPortfolioValue, cfg.Jobs.HistorySamplingCrontab, false)
	sched.NewCrontabJob("ticker catalog refresh", portfolioSrv.RefreshTickers, cfg.Jobs.TickerRefreshCrontab, false)
	if cfg.GoogleDrive.Enabled {
		sched.NewCrontabJob("report backup", portfolioSrv.BackupReport, cfg.Jobs.ReportBackupCrontab, false)
	}
	sched.Start()
	defer sched.Stop()

	controller := rest.NewController(portfolioSrv)
	server := rest.NewServer(cfg, controller)

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("http server stopped", slog.String("err", err.Error()))
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
