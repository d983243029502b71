package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rorical/filedrop/internal/logging"
	internalnats "github.com/Rorical/filedrop/internal/nats"
)

const EnvPrefix = "FILEDROP_"

type Config struct {
	Service ServiceConfig
	HTTP    HTTPConfig
	Upload  UploadConfig
	Log     LogConfig

	NATS   internalnats.ConnConfig
	Events EventsConfig

	Redis   RedisConfig
	Reserve ReserveConfig

	OTel OTelConfig
}

type ServiceConfig struct {
	Env string
}

type HTTPConfig struct {
	Addr            string
	MaxRequestBytes int64
	MultipartMemory int64
}

type UploadConfig struct {
	// Workers bounds per-batch concurrency; 0 means GOMAXPROCS.
	Workers int
	// SettingsFile is an optional dotenv file holding the upload policy keys.
	SettingsFile string
	// SniffUndeclared fills in a content type for parts sent without one.
	SniffUndeclared bool
	// RenameStored moves stored files to their permanent names.
	RenameStored bool
}

type LogConfig struct {
	Level  slog.Level
	Format string
}

type EventsConfig struct {
	Enabled bool
}

type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

type ReserveConfig struct {
	Enabled bool
	TTL     time.Duration
}

type OTelConfig struct {
	Disabled bool
	Endpoint string
}

func LoadFromEnv() (Config, error) {
	cfg := Config{}

	cfg.Service.Env = getenv("FILEDROP_ENV", "dev")

	cfg.HTTP.Addr = getenv("FILEDROP_HTTP_ADDR", "127.0.0.1:8080")
	cfg.HTTP.MaxRequestBytes = getenvInt64("FILEDROP_MAX_REQUEST_BYTES", 64<<20)
	cfg.HTTP.MultipartMemory = getenvInt64("FILEDROP_MULTIPART_MEMORY", 32<<20)

	cfg.Upload.Workers = getenvInt("FILEDROP_WORKERS", 0)
	cfg.Upload.SettingsFile = getenv("FILEDROP_SETTINGS_FILE", "")

	var err error
	if cfg.Upload.SniffUndeclared, err = getenvBool("FILEDROP_SNIFF_UNDECLARED", false); err != nil {
		return Config{}, err
	}
	if cfg.Upload.RenameStored, err = getenvBool("FILEDROP_RENAME_STORED", true); err != nil {
		return Config{}, err
	}

	if cfg.Log.Level, err = logging.ParseLevel(getenv("FILEDROP_LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("FILEDROP_LOG_LEVEL: %w", err)
	}
	cfg.Log.Format = getenv("FILEDROP_LOG_FORMAT", "json")

	cfg.NATS = internalnats.DefaultConnConfig()
	cfg.NATS.URL = getenv("FILEDROP_NATS_URL", cfg.NATS.URL)
	cfg.NATS.Name = getenv("FILEDROP_NATS_NAME", cfg.NATS.Name)
	if d := getenv("FILEDROP_NATS_TIMEOUT", ""); d != "" {
		dur, err := time.ParseDuration(d)
		if err != nil {
			return Config{}, fmt.Errorf("FILEDROP_NATS_TIMEOUT: %w", err)
		}
		cfg.NATS.Timeout = dur
	}
	if cfg.Events.Enabled, err = getenvBool("FILEDROP_EVENTS_ENABLED", false); err != nil {
		return Config{}, err
	}

	cfg.Redis.Addr = getenv("FILEDROP_REDIS_ADDR", "127.0.0.1:6379")
	cfg.Redis.Password = getenv("FILEDROP_REDIS_PASSWORD", "")
	cfg.Redis.DB = getenvInt("FILEDROP_REDIS_DB", 0)
	if cfg.Reserve.Enabled, err = getenvBool("FILEDROP_RESERVE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.Reserve.TTL = getenvDuration("FILEDROP_RESERVE_TTL", 10*time.Minute)

	if cfg.OTel.Disabled, err = getenvBool("FILEDROP_OTEL_DISABLED", false); err != nil {
		return Config{}, err
	}
	cfg.OTel.Endpoint = getenv("FILEDROP_OTEL_ENDPOINT", "")

	return cfg, nil
}

func getenv(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvInt64(key string, def int64) int64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getenvBool(key string, def bool) (bool, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
