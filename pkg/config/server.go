package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds configuration for the HTTP API
type ServerConfig struct {
	Port            int
	LogLevel        string
	RateLimit       float64 // requests per second, 0 disables
	RateBurst       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CachePath       string
	CacheTTL        time.Duration
}

// LoadServerConfig reads server settings from defaults, an optional config
// file and HUBCONN_* environment variables, in increasing precedence.
func LoadServerConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("rate_limit", 20.0)
	v.SetDefault("rate_burst", 40)
	v.SetDefault("read_timeout", "30s")
	v.SetDefault("write_timeout", "2m")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("max_body_bytes", 32<<20)
	v.SetDefault("cache_path", "")
	v.SetDefault("cache_ttl", "24h")

	v.SetConfigName("hubconn-server")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/hubconn")
	v.AddConfigPath(".")

	if envPath := os.Getenv("HUBCONN_CONFIG_PATH"); envPath != "" {
		v.SetConfigFile(envPath)
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("HUBCONN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &ServerConfig{
		Port:         v.GetInt("port"),
		LogLevel:     v.GetString("log_level"),
		RateLimit:    v.GetFloat64("rate_limit"),
		RateBurst:    v.GetInt("rate_burst"),
		MaxBodyBytes: v.GetInt64("max_body_bytes"),
		CachePath:    v.GetString("cache_path"),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"read_timeout", &cfg.ReadTimeout},
		{"write_timeout", &cfg.WriteTimeout},
		{"shutdown_timeout", &cfg.ShutdownTimeout},
		{"cache_ttl", &cfg.CacheTTL},
	}
	for _, d := range durations {
		value, err := ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = value
	}

	if err := validateServer(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be greater than 0 when rate_limit is set")
	}

	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be greater than 0")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	return nil
}
