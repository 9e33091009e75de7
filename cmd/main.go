package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/data"
	"github.com/KotFed0t/invest_assistant/data/cache"
	"github.com/KotFed0t/invest_assistant/data/repository/postgres"
	"github.com/KotFed0t/invest_assistant/data/session"
	"github.com/KotFed0t/invest_assistant/internal/externalApi/anthropicApi"
	"github.com/KotFed0t/invest_assistant/internal/externalApi/polygonApi"
	"github.com/KotFed0t/invest_assistant/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/invest_assistant/internal/scheduler"
	"github.com/KotFed0t/invest_assistant/internal/service/investService"
	"github.com/KotFed0t/invest_assistant/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	polygonApiClient := polygonApi.New(cfg)
	anthropicApiClient := anthropicApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	investSrv := investService.New(cfg, pgRepo, redisCache, redisSession, polygonApiClient, anthropicApiClient, reportGenerator)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh stock prices", investSrv.RefreshStockPrices, cfg.Jobs.RefreshPricesInterval, true)
	sched.NewCrontabJob("refresh market data", investSrv.RefreshMarketData, cfg.Jobs.MarketDataCrontab, true)
	sched.NewCrontabJob("pre-market recommendations", investSrv.RefreshRecommendations, cfg.Jobs.PreMarketRecsCrontab, false)
	sched.NewCrontabJob("post-market recommendations", investSrv.RefreshRecommendations, cfg.Jobs.PostMarketRecsCrontab, false)
	sched.NewCrontabJob("deactivate recommendations", investSrv.DeactivateRecommendations, cfg.Jobs.DeactivateRecsCrontab, false)
	sched.Start()
	defer sched.Stop()

	controller := rest.NewController(investSrv)
	server := rest.NewServer(cfg, controller)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", slog.String("err", err.Error()))
			cancel()
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", slog.String("err", err.Error()))
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
