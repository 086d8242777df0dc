// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds server configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the JSON API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health service (e.g. :9090).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Required by cmd/server, cmd/migrate and cmd/seed.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisAddr is host:port of Redis. Empty selects in-memory code store and rate limiter (single instance only).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SMSLocalAPIKey is the API key for SMS Local. Required unless dev OTP mode is on.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for SMS Local.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS Local API base URL.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`
	// OTPReturnToClient enables dev OTP mode: no SMS is sent and codes are readable at GET /dev/forgot-password/otp.
	// Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// ResetCodeTTL is how long an SMS code stays valid (e.g. "10m").
	ResetCodeTTL string `mapstructure:"RESET_CODE_TTL"`
	// ResetMaxAttempts is the number of wrong codes after which the code is burned.
	ResetMaxAttempts int `mapstructure:"RESET_MAX_ATTEMPTS"`
	// ResetRequestLimit is the number of code requests allowed per phone and per IP in one window.
	ResetRequestLimit int `mapstructure:"RESET_REQUEST_LIMIT"`
	// ResetRequestWindow is the fixed rate-limit window (e.g. "15m").
	ResetRequestWindow string `mapstructure:"RESET_REQUEST_WINDOW"`
	// ResetConcealUnknownPhone answers code requests for unknown phones with success and sends nothing.
	ResetConcealUnknownPhone bool `mapstructure:"RESET_CONCEAL_UNKNOWN_PHONE"`
	// CORSAllowedOrigins is a comma-separated list of browser origins allowed to call the API.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// OTLPEndpoint is the OTLP gRPC collector (e.g. localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext to the collector even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// TelemetryKafkaBrokers is a comma-separated list of Kafka brokers for recovery events.
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for recovery events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SMS_LOCAL_API_KEY", "")
	v.SetDefault("SMS_LOCAL_SENDER", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://app.smslocal.in/api/smsapi")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RESET_CODE_TTL", "10m")
	v.SetDefault("RESET_MAX_ATTEMPTS", 5)
	v.SetDefault("RESET_REQUEST_LIMIT", 5)
	v.SetDefault("RESET_REQUEST_WINDOW", "15m")
	v.SetDefault("RESET_CONCEAL_UNKNOWN_PHONE", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "password-recovery-events")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.ResetMaxAttempts <= 0 {
		return nil, errors.New("config: RESET_MAX_ATTEMPTS must be positive")
	}
	if cfg.ResetRequestLimit <= 0 {
		return nil, errors.New("config: RESET_REQUEST_LIMIT must be positive")
	}

	return &cfg, nil
}

// CodeTTL parses ResetCodeTTL. Returns 10m if unset or invalid.
func (c *Config) CodeTTL() time.Duration {
	return parseDurationOr(c.ResetCodeTTL, 10*time.Minute)
}

// RequestWindow parses ResetRequestWindow. Returns 15m if unset or invalid.
func (c *Config) RequestWindow() time.Duration {
	return parseDurationOr(c.ResetRequestWindow, 15*time.Minute)
}

// DevOTPEnabled reports whether codes are kept for dev retrieval instead of sent by SMS.
func (c *Config) DevOTPEnabled() bool {
	return c != nil && c.OTPReturnToClient && c.Env != "production"
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TelemetryKafkaBrokers)
}

// CORSOrigins returns the allowed browser origins.
func (c *Config) CORSOrigins() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
