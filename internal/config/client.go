package config

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ClientConfig configures the recovery command-line client.
type ClientConfig struct {
	// BaseURL is the server the recovery endpoints live on.
	BaseURL string `mapstructure:"RECOVERY_BASE_URL"`
	// RedirectDelay is the pause between a successful reset and navigation to /login.
	RedirectDelay time.Duration `mapstructure:"RECOVERY_REDIRECT_DELAY"`
	// HTTPTimeout bounds a single request to an endpoint.
	HTTPTimeout time.Duration `mapstructure:"RECOVERY_HTTP_TIMEOUT"`
	// LogLevel is a zerolog level name; the client logs to stderr.
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// clientFlagKeys maps command-line flag names to config keys.
var clientFlagKeys = map[string]string{
	"base-url":       "RECOVERY_BASE_URL",
	"redirect-delay": "RECOVERY_REDIRECT_DELAY",
	"timeout":        "RECOVERY_HTTP_TIMEOUT",
	"log-level":      "LOG_LEVEL",
}

// LoadClient builds ClientConfig from .env, the environment and flags (highest precedence).
// flags may be nil; only flags that were set on the command line override other sources.
func LoadClient(flags *pflag.FlagSet) (*ClientConfig, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("RECOVERY_BASE_URL", "http://localhost:8080")
	v.SetDefault("RECOVERY_REDIRECT_DELAY", "2s")
	v.SetDefault("RECOVERY_HTTP_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "warn")

	if flags != nil {
		for name, key := range clientFlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("config: RECOVERY_BASE_URL must be set")
	}
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = 2 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	return &cfg, nil
}
