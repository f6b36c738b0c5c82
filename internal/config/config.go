package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Logger    Logger    `mapstructure:"logger"`
	Providers Providers `mapstructure:"providers"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Providers groups the external quote-source configuration.
type Providers struct {
	Yahoo     Yahoo     `mapstructure:"yahoo"`
	Coingecko Coingecko `mapstructure:"coingecko"`
	FX        FX        `mapstructure:"fx"`
}

// Yahoo holds the configuration for the equity quote provider. The
// provider rate-limits aggressively, so requests are paced client-side
// and retried with an escalating backoff on 429s.
type Yahoo struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MaxRetries     int     `mapstructure:"max_retries"`
	BackoffSeconds int     `mapstructure:"backoff_seconds"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Coingecko holds the configuration for the crypto quote provider.
type Coingecko struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// FX holds the configuration for the USD/ARS rate providers. The
// fallback URL is queried when the primary fails for any reason.
type FX struct {
	PrimaryURL     string `mapstructure:"primary_url"`
	FallbackURL    string `mapstructure:"fallback_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "investments.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("providers.yahoo.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("providers.yahoo.rate_limit", 1)       // requests per second
	viper.SetDefault("providers.yahoo.rate_limit_burst", 1) // strictly sequential
	viper.SetDefault("providers.yahoo.max_retries", 2)
	viper.SetDefault("providers.yahoo.backoff_seconds", 2)
	viper.SetDefault("providers.yahoo.timeout_seconds", 15)
	viper.SetDefault("providers.coingecko.base_url", "https://api.coingecko.com")
	viper.SetDefault("providers.coingecko.timeout_seconds", 10)
	viper.SetDefault("providers.fx.primary_url", "https://dolarapi.com/v1/dolares")
	viper.SetDefault("providers.fx.fallback_url", "https://api.bluelytics.com.ar/v2/latest")
	viper.SetDefault("providers.fx.timeout_seconds", 10)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
