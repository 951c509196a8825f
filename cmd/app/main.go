package main

import (
	"context"
	"docshare/internal/app"
	"docshare/internal/config"
	"docshare/internal/http/server"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

const (
	envDev   = "dev"
	envLocal = "local"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	if err := run(log, cfg); err != nil {
		log.Error("docshare stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run owns every resource so that deferred cleanup happens before main exits.
func run(log *slog.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting docshare",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.FileStorage.Type),
		slog.String("permission_cache", cfg.Cache.Backend),
	)

	application, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("close resources", slog.String("error", err.Error()))
		}
	}()

	return server.StartServer(ctx, &cfg.HTTPServer, log,
		application.AuthService, application.DocumentService, application.SharingManager)
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == envLocal || env == envDev {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if env == envLocal {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts)).With(slog.String("env", env))
}
