package redis

import (
	"context"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SetNXer is the subset of the redis client used for reservations.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
}

// Reserver claims destination paths so that server processes sharing an
// upload directory never hand out the same name while a write is pending.
// It satisfies naming.Reserver.
type Reserver struct {
	Client SetNXer
	Prefix string
	TTL    time.Duration
}

func (r Reserver) key(path string) string {
	return fmt.Sprintf("%s:%s", r.Prefix, path)
}

// Reserve returns true if the caller now holds path, false if another
// process reserved it first.
func (r Reserver) Reserve(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("path required")
	}
	if r.Client == nil {
		return false, fmt.Errorf("redis client required")
	}
	if r.Prefix == "" {
		r.Prefix = "filedrop:reserved"
	}
	if r.TTL == 0 {
		r.TTL = 10 * time.Minute
	}

	holder, _ := os.Hostname()
	ok, err := r.Client.SetNX(ctx, r.key(path), fmt.Sprintf("%s:%d", holder, os.Getpid()), r.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}
