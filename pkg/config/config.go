// Package config loads service configuration files and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigDir is used when CONFIG_PATH is not set.
const DefaultConfigDir = "./configs"

// Load reads {CONFIG_PATH}/{serviceName}.yaml into a viper instance.
//
// Every key can be overridden by an environment variable named
// {ENV_PREFIX}_{KEY}, where dots in the key become underscores
// (server.http.port -> CLOSERLINK_SERVER_HTTP_PORT). Defaults must be
// registered for a key to be picked up from the environment on Unmarshal.
// A missing file is not an error: the service can run on defaults and env.
func Load(serviceName, envPrefix string, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(envPrefix))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configDir := os.Getenv("CONFIG_PATH")
	if configDir == "" {
		configDir = DefaultConfigDir
	}
	v.SetConfigName(serviceName)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}
