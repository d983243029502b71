package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rorical/filedrop/internal/config"
	"github.com/Rorical/filedrop/internal/events"
	"github.com/Rorical/filedrop/internal/logging"
	internalnats "github.com/Rorical/filedrop/internal/nats"
	"github.com/Rorical/filedrop/internal/naming"
	"github.com/Rorical/filedrop/internal/redis"
	"github.com/Rorical/filedrop/internal/server"
	"github.com/Rorical/filedrop/internal/settings"
	"github.com/Rorical/filedrop/internal/upload"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	shutdownOTel, err := logging.InitOTel(ctx, logging.OTelConfig{
		Endpoint:    cfg.OTel.Endpoint,
		Insecure:    true,
		ServiceName: "filedrop-server",
		Env:         cfg.Service.Env,
		Disabled:    cfg.OTel.Disabled,
	})
	if err != nil {
		slog.Error("otel init", "err", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownOTel(context.Background()) }()

	src, err := config.SettingsSource(cfg.Upload)
	if err != nil {
		slog.Error("settings source", "err", err)
		os.Exit(1)
	}
	provider := settings.New(src)

	alloc := &naming.Allocator{}
	if cfg.Reserve.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			slog.Error("redis connect", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		alloc.Reserver = redis.Reserver{Client: rdb, TTL: cfg.Reserve.TTL}
	}

	api := &server.API{
		Policy:          func() (upload.Policy, error) { return config.LoadPolicy(provider) },
		Runner:          &upload.Runner{Allocator: alloc, Workers: cfg.Upload.Workers},
		SniffUndeclared: cfg.Upload.SniffUndeclared,
		RenameStored:    cfg.Upload.RenameStored,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		MultipartMemory: cfg.HTTP.MultipartMemory,
	}

	if cfg.Events.Enabled {
		nc, js, err := internalnats.Connect(ctx, cfg.NATS)
		if err != nil {
			slog.Error("nats connect", "err", err)
			os.Exit(1)
		}
		defer nc.Drain()

		if err := internalnats.EnsureStream(ctx, js); err != nil {
			slog.Error("ensure stream", "err", err)
			os.Exit(1)
		}
		api.Events = &events.Publisher{JS: js}
	}

	if pol, err := config.LoadPolicy(provider); err != nil {
		slog.Warn("upload policy not usable yet", "err", err)
	} else {
		slog.Info("upload policy", "enabled", pol.Enabled, "directory", pol.Directory, "retry_budget", pol.RetryBudget)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.HTTP.Addr, "env", cfg.Service.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	slog.Info("server shutdown")
}
