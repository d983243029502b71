package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultClientName = "filedrop"

type Config struct {
	Addr     string
	Password string
	DB       int
	// ClientName is reported by CLIENT LIST. Defaults to "filedrop".
	ClientName string
	// PingTimeout bounds the startup connectivity check. Defaults to 3s.
	PingTimeout time.Duration
}

// Connect opens a client and fails fast when the server is unreachable, so
// name reservation never silently degrades at request time.
func Connect(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr required")
	}
	if cfg.ClientName == "" {
		cfg.ClientName = defaultClientName
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 3 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: cfg.ClientName,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
