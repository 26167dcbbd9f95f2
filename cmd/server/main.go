package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unimarket/internal/app"
	"unimarket/internal/config"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	bootstrap, cleanup, err := app.Bootstrap(cfg, lg)
	if err != nil {
		lg.Error("failed to bootstrap app", logger.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			lg.Warn("cleanup error", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := bootstrap.Container
	if cfg.Database.RunMigrations {
		if _, err := app.Migrate(ctx, c.DB, lg); err != nil {
			lg.Error("migrations failed", logger.Error(err))
			os.Exit(1)
		}
	}
	if cfg.Database.RunSeeders {
		if err := app.Seed(ctx, c.DB, cfg.Seed, lg); err != nil {
			lg.Error("seeders failed", logger.Error(err))
			os.Exit(1)
		}
	}

	go c.Hub.Run(ctx)

	var sched *scheduler.Scheduler
	if cfg.App.Enabled(config.BackendCollab) {
		sched = scheduler.New(cfg.Recommendation.Cron, c.Services.Recommendation, lg)
		if err := sched.Start(ctx); err != nil {
			lg.Error("scheduler failed", logger.Error(err))
			os.Exit(1)
		}
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		lg.Error("invalid HTTP port", logger.Error(err))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", logger.String("addr", addr), logger.Strings("backends", cfg.App.Backends))
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			lg.Error("server error", logger.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			lg.Warn("shutdown error", logger.Error(err))
		}
	}

	if sched != nil {
		sched.Stop()
	}
}
