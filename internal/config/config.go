package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/wekeepgrowing/closerlink/pkg/config"
)

const (
	serviceName = "payment"
	envPrefix   = "CLOSERLINK"
)

type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Outbound OutboundConfig `mapstructure:"outbound"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// LogConfig mirrors pkg/logger.Config.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	FilePath    string `mapstructure:"file_path"`
	Development bool   `mapstructure:"development"`
}

// LoadConfig reads configs/payment.yaml (or $CONFIG_PATH/payment.yaml) and
// applies CLOSERLINK_* environment overrides on top of the defaults.
func LoadConfig() (*Config, error) {
	v, err := pkgconfig.Load(serviceName, envPrefix, defaults())
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":        "closerlink-payment",
		"service.environment": "development",
		"service.version":     "dev",

		"server.http.host":          "0.0.0.0",
		"server.http.port":          8080,
		"server.http.read_timeout":  15 * time.Second,
		"server.http.write_timeout": 30 * time.Second,
		"server.http.body_limit":    "1M",
		"server.grpc.host":          "0.0.0.0",
		"server.grpc.port":          9090,
		"server.grpc.enabled":       true,

		"database.host":               "localhost",
		"database.port":               5432,
		"database.name":               "closerlink",
		"database.user":               "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  30 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.connect_timeout":    30 * time.Second,
		"database.log_level":          "warn",
		"database.slow_threshold":     200 * time.Millisecond,

		"redis.addr":         "",
		"redis.password":     "",
		"redis.db":           0,
		"redis.inflight_ttl": 2 * time.Minute,

		"webhook.secret":              "",
		"webhook.secret_headers":      []string{"X-Webhook-Secret", "X-Whop-Webhook-Secret"},
		"webhook.timestamp_tolerance": 5 * time.Minute,

		"outbound.url":             "",
		"outbound.timeout":         5 * time.Second,
		"outbound.max_attempts":    2,
		"outbound.backoff":         time.Duration(0),
		"outbound.error_max_chars": 500,

		"auth.jwt_secret": "",
		"auth.admin_role": "admin",

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.file_path":   "",
		"log.development": false,
	}
}
