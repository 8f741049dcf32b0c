package config

import (
	"fmt"
	"time"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	// ConnectTimeout bounds startup retries while the server is unreachable
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`

	// gorm logging: silent, error, warn or info
	LogLevel      string        `mapstructure:"log_level"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

// RedisConfig configures the optional in-flight delivery guard.
// An empty Addr disables it.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	InflightTTL time.Duration `mapstructure:"inflight_ttl"`
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}
