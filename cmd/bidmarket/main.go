package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bidmarket/internal/cache"
	"bidmarket/internal/config"
	"bidmarket/internal/http/handlers"
	applog "bidmarket/internal/log"
	"bidmarket/internal/repos"
	"bidmarket/internal/services"
)

func main() {
	if err := run(); err != nil {
		applog.Logger().Fatal().Err(err).Msg("bidmarket stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applog.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile); err != nil {
		applog.Logger().Warn().Err(err).Str("file", cfg.LogFile).Msg("could not open log file")
	}
	log := applog.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	if cfg.SeedDemo {
		if err := repos.SeedDemo(ctx, db, cfg.BcryptCost); err != nil {
			return err
		}
	}

	// Revoked tokens go to Redis when configured, else the SQL table.
	var revoked services.RevocationStore
	if cfg.RedisAddr != "" {
		rdb := cache.NewClient(cfg)
		defer rdb.Close()
		if err := cache.Ping(ctx, rdb); err != nil {
			return err
		}
		revoked = cache.NewRevocations(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("token revocations stored in redis")
	}

	deps, err := handlers.NewDeps(db, cfg, revoked)
	if err != nil {
		return err
	}
	app := handlers.NewApp(cfg, deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("listening")
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
