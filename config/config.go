package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Config holds process settings read from the environment.
type Config struct {
	Port            string        `env:"BOARD_API_PORT"          envDefault:"8080"`
	Debug           bool          `env:"DEBUG"`
	LogFormat       string        `env:"LOG_FORMAT"              envDefault:"text"`
	BoardTitle      string        `env:"BOARD_TITLE"             envDefault:"My Trello Board"`
	RedisConn       string        `env:"REDIS_CONNECTION_STRING"`
	DeduperTTL      time.Duration `env:"DEDUPER_TTL"             envDefault:"24h"`
	AllowOrigins    []string      `env:"CORS_ALLOW_ORIGINS"      envDefault:"*" envSeparator:","`
	StreamHeartbeat time.Duration `env:"STREAM_HEARTBEAT"        envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"        envDefault:"10s"`
	OTelEndpoint    string        `env:"OTEL_ENDPOINT"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DeduperTTL <= 0 {
		return errors.New("invalid DEDUPER_TTL: must be greater than zero")
	}
	if c.StreamHeartbeat <= 0 {
		return errors.New("invalid STREAM_HEARTBEAT: must be greater than zero")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("invalid SHUTDOWN_TIMEOUT: must be greater than zero")
	}
	if strings.TrimSpace(c.BoardTitle) == "" {
		return errors.New("invalid BOARD_TITLE: must not be blank")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}

// NewLogger builds the process logger.
func (c Config) NewLogger() *log.Logger {
	logger := log.New()
	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	}
	if c.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// RedisOptions parses RedisConn. Both redis:// URLs and the
// "host:port,password=...,ssl=true" form are accepted. It returns nil when
// no connection string is configured.
func (c Config) RedisOptions() *redis.Options {
	if c.RedisConn == "" {
		return nil
	}
	if opts, err := redis.ParseURL(c.RedisConn); err == nil {
		return opts
	}
	parts := strings.Split(c.RedisConn, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(kv[1], "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
