package nats

import (
	"context"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/Rorical/filedrop/internal/logging"
)

type ConnConfig struct {
	URL     string
	Name    string
	Timeout time.Duration
	// MaxReconnects < 0 retries forever.
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		URL:           "nats://127.0.0.1:4222",
		Name:          "filedrop",
		Timeout:       5 * time.Second,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Connect dials NATS and returns the connection with its JetStream context.
// Connection state changes are logged with the logger carried by ctx.
func Connect(ctx context.Context, cfg ConnConfig) (*nats.Conn, nats.JetStreamContext, error) {
	def := DefaultConnConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = def.MaxReconnects
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = def.ReconnectWait
	}

	logger := logging.FromContext(ctx)
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}
