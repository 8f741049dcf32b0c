package config

import "time"

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

// WebhookConfig configures inbound signature verification. Secret is the
// fallback used when the stored settings row has none.
type WebhookConfig struct {
	Secret             string        `mapstructure:"secret"`
	SecretHeaders      []string      `mapstructure:"secret_headers"`
	TimestampTolerance time.Duration `mapstructure:"timestamp_tolerance"`
}

// OutboundConfig configures delivery to the automation endpoint. URL is the
// fallback used when the stored settings row has none.
type OutboundConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Backoff       time.Duration `mapstructure:"backoff"`
	ErrorMaxChars int           `mapstructure:"error_max_chars"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	AdminRole string `mapstructure:"admin_role"`
}
