package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rorical/filedrop/internal/config"
	"github.com/Rorical/filedrop/internal/events"
	"github.com/Rorical/filedrop/internal/logging"
	internalnats "github.com/Rorical/filedrop/internal/nats"
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
		ServiceName: "filedrop-worker",
		Env:         cfg.Service.Env,
		Disabled:    cfg.OTel.Disabled,
	})
	if err != nil {
		slog.Error("otel init", "err", err)
		os.Exit(1)
	}
	defer func() {
		_ = shutdownOTel(context.Background())
	}()

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

	role := os.Getenv("FILEDROP_WORKER_ROLE")
	if role == "" {
		role = "audit"
	}

	slog.Info("worker started", "env", cfg.Service.Env, "role", role)

	switch role {
	case "audit":
		w := &events.Tail{
			NATS:       js,
			Subject:    internalnats.SubjectAll,
			Durable:    "audit",
			MaxDeliver: internalnats.DefaultMaxDeliver,
		}
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("audit run", "err", err)
			os.Exit(1)
		}
	case "audit-failures":
		// only files that were accepted but could not be stored
		w := &events.Tail{
			NATS:       js,
			Subject:    internalnats.SubjectFileFailed,
			Durable:    "audit-failures",
			MaxDeliver: internalnats.DefaultMaxDeliver,
		}
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("audit-failures run", "err", err)
			os.Exit(1)
		}
	default:
		slog.Error("unknown worker role", "role", role)
		os.Exit(2)
	}
}
